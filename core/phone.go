package core

// Phone 是目录中的一条手机记录（CatalogItem）。
// 所有字段在入库校验（catalog.Normalize）之后都有确定值：文本缺失为空串，数值缺失为默认值。
type Phone struct {
	ID         string `json:"id" yaml:"id"`
	Model      string `json:"model" yaml:"model"`
	Brand      string `json:"brand" yaml:"brand"`
	Price      int    `json:"price" yaml:"price"`
	LaunchYear int    `json:"launch_year" yaml:"launch_year"`
	Processor  string `json:"processor" yaml:"processor"`
	RAM        string `json:"ram" yaml:"ram"`
	Storage    string `json:"storage" yaml:"storage"`
	Display    string `json:"display" yaml:"display"`
	Battery    string `json:"battery" yaml:"battery"`

	// BestFor 是逗号分隔的多标签用途，例如 "gaming, multitasking"
	BestFor string `json:"best_for" yaml:"best_for"`

	// 质量分，名义区间 0~5
	Gaming       float64 `json:"gaming" yaml:"gaming"`
	Camera       float64 `json:"camera" yaml:"camera"`
	BatteryScore float64 `json:"battery_score" yaml:"battery_score"`
	Performance  float64 `json:"performance" yaml:"performance"`
	DisplayScore float64 `json:"display_score" yaml:"display_score"`
	Rating       float64 `json:"rating" yaml:"rating"`

	Reason string `json:"reason" yaml:"reason"`
}

// DefaultScore 是数值字段缺失或无法解析时使用的中性默认值。
const DefaultScore = 4.0
