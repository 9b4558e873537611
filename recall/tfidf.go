package recall

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/top3pick/phonerec/core"
)

// DefaultMaxFeatures 是词表上限的默认值。
const DefaultMaxFeatures = 100

// 至少两个字符的词项（Unicode 字母、数字或下划线），先转小写再匹配
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize 把文本切分为小写词项。
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// SparseVector 是按 Indices 升序存放的稀疏向量。
type SparseVector struct {
	Indices []int     `json:"i"`
	Values  []float64 `json:"v"`
}

// Dot 计算两个稀疏向量的内积。
func (a SparseVector) Dot(b SparseVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// Norm 返回 L2 范数。
func (a SparseVector) Norm() float64 {
	var s float64
	for _, v := range a.Values {
		s += v * v
	}
	return math.Sqrt(s)
}

// Cosine 计算余弦相似度，任一向量为零向量时返回 0。
func Cosine(a, b SparseVector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

// TFIDF 是冻结词表的 TF-IDF 文本索引。
//
//   - 词表：语料总词频最高的 MaxFeatures 个词项（同频按字典序），索引按字典序排列
//   - idf = ln((1+n)/(1+df)) + 1
//   - 文档向量：词频 × idf，再做 L2 归一化
//
// Fit 之后不可变，可并发查询。
type TFIDF struct {
	Vocabulary []string       `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Docs       []SparseVector `json:"docs"`

	index map[string]int
}

// FitTFIDF 在语料上拟合索引。maxFeatures <= 0 时使用 DefaultMaxFeatures。
// 语料中没有可用词项时得到零词表索引，所有查询都返回空结果。
func FitTFIDF(corpus []string, maxFeatures int) (*TFIDF, error) {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	tokenized := make([][]string, len(corpus))
	termCount := make(map[string]int)
	docFreq := make(map[string]int)
	for i, doc := range corpus {
		tokens := Tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			termCount[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}
	terms := make([]string, 0, len(termCount))
	for term := range termCount {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		ci, cj := termCount[terms[i]], termCount[terms[j]]
		if ci != cj {
			return ci > cj
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	t := &TFIDF{
		Vocabulary: terms,
		IDF:        make([]float64, len(terms)),
		Docs:       make([]SparseVector, len(corpus)),
	}
	t.buildIndex()
	for i, term := range terms {
		t.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	for i, tokens := range tokenized {
		t.Docs[i] = t.project(tokens)
	}
	return t, nil
}

// RestoreTFIDF 由持久化的状态恢复索引，不重新拟合。
func RestoreTFIDF(vocabulary []string, idf []float64, docs []SparseVector) (*TFIDF, error) {
	if len(vocabulary) != len(idf) {
		return nil, fmt.Errorf("recall: vocabulary/idf length mismatch (%d vs %d)", len(vocabulary), len(idf))
	}
	for i, d := range docs {
		if len(d.Indices) != len(d.Values) {
			return nil, fmt.Errorf("recall: malformed document vector %d", i)
		}
		for _, idx := range d.Indices {
			if idx < 0 || idx >= len(vocabulary) {
				return nil, fmt.Errorf("recall: document vector %d references term %d outside vocabulary", i, idx)
			}
		}
	}
	t := &TFIDF{Vocabulary: vocabulary, IDF: idf, Docs: docs}
	t.buildIndex()
	return t, nil
}

func (t *TFIDF) buildIndex() {
	t.index = make(map[string]int, len(t.Vocabulary))
	for i, term := range t.Vocabulary {
		t.index[term] = i
	}
}

// Transform 把任意文本投影到冻结词表，词表外的词项权重为 0。
func (t *TFIDF) Transform(text string) SparseVector {
	return t.project(Tokenize(text))
}

func (t *TFIDF) project(tokens []string) SparseVector {
	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := t.index[tok]; ok {
			counts[idx]++
		}
	}
	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := float64(counts[idx]) * t.IDF[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}

// Match 是一次文本查询的命中。
type Match struct {
	Index int     // 目录位置
	Score float64 // 余弦相似度
}

// Query 按余弦相似度降序返回相似度 > 0 的前 topK 个文档，同分按目录顺序。
// topK <= 0 时使用 core.Defaults.DefaultTopK()。
func (t *TFIDF) Query(text string, topK int) ([]Match, error) {
	if t == nil || t.index == nil {
		return nil, core.ErrNotReady
	}
	if topK <= 0 {
		topK = core.Defaults.DefaultTopK()
	}

	q := t.Transform(text)
	matches := make([]Match, 0)
	if len(q.Indices) == 0 {
		return matches, nil
	}
	for i, doc := range t.Docs {
		if s := Cosine(q, doc); s > 0 {
			matches = append(matches, Match{Index: i, Score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
