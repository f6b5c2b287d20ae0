// Package fts implements the full-text index of §4.3: tokenization,
// positional postings, a BM25 relevance scorer, and a phrase-boost term
// that multiplies BM25 score by 1 + α·(the number of times a query phrase
// occurs verbatim in a document).
package fts

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// bm25K1 and bm25B are the standard Okapi BM25 tuning constants:
// k1 controls term-frequency saturation, b controls length normalization.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Index is a single-field full-text index over a set of documents
// identified by uint32 IDs. Term->docID membership is kept in a Roaring
// bitmap per token (cheap set operations, compact for sparse terms);
// term positions within each document are kept separately since Roaring
// only stores integer membership, not ordered occurrence lists.
type Index struct {
	minWordLength    int
	indexPositions   bool
	phraseBoostAlpha float64

	postings  map[string]*roaring.Bitmap
	positions map[string]map[uint32][]int

	docLength map[uint32]int
	totalDocs int
	totalLen  int
}

// Config controls tokenization and scoring behavior; it mirrors
// pkg/options.FTSOptions so callers can build an Index straight from
// engine configuration.
type Config struct {
	MinWordLength    int
	IndexPositions   bool
	PhraseBoostAlpha float64
}

// New builds an empty Index from cfg.
func New(cfg Config) *Index {
	return &Index{
		minWordLength:    cfg.MinWordLength,
		indexPositions:   cfg.IndexPositions,
		phraseBoostAlpha: cfg.PhraseBoostAlpha,
		postings:         make(map[string]*roaring.Bitmap),
		positions:        make(map[string]map[uint32][]int),
		docLength:        make(map[uint32]int),
	}
}

// Index tokenizes text and records docID's occurrences of every token.
// Re-indexing a docID that was already indexed first removes its prior
// postings, so callers can re-index a document in place after an update.
func (idx *Index) Index(docID uint32, text string) {
	idx.Remove(docID)

	tokens := tokenize(text, idx.minWordLength)
	if len(tokens) == 0 {
		return
	}

	idx.totalDocs++
	idx.docLength[docID] = len(tokens)
	idx.totalLen += len(tokens)

	for pos, tok := range tokens {
		bm, ok := idx.postings[tok]
		if !ok {
			bm = roaring.New()
			idx.postings[tok] = bm
		}
		bm.Add(docID)

		if idx.indexPositions {
			byDoc, ok := idx.positions[tok]
			if !ok {
				byDoc = make(map[uint32][]int)
				idx.positions[tok] = byDoc
			}
			byDoc[docID] = append(byDoc[docID], pos)
		}
	}
}

// Remove deletes docID from every token's postings and position list.
func (idx *Index) Remove(docID uint32) {
	length, ok := idx.docLength[docID]
	if !ok {
		return
	}

	idx.totalDocs--
	idx.totalLen -= length
	delete(idx.docLength, docID)

	for tok, bm := range idx.postings {
		if !bm.Contains(docID) {
			continue
		}
		bm.Remove(docID)
		if bm.IsEmpty() {
			delete(idx.postings, tok)
		}
		if byDoc, ok := idx.positions[tok]; ok {
			delete(byDoc, docID)
			if len(byDoc) == 0 {
				delete(idx.positions, tok)
			}
		}
	}
}

// Result is one scored hit from Search or SearchPhrase.
type Result struct {
	DocID uint32
	Score float64
}

// Search scores every document containing at least one query token using
// BM25, boosted by phraseCount(doc, query tokens in order) per §4.3's
// `1 + α·phraseCount` formula, and returns hits sorted by descending
// score.
func (idx *Index) Search(query string) []Result {
	terms := tokenize(query, idx.minWordLength)
	if len(terms) == 0 {
		return nil
	}

	candidates := idx.candidateDocs(terms)
	avgdl := idx.averageDocLength()

	results := make([]Result, 0, len(candidates))
	for docID := range candidates {
		score := idx.bm25(docID, terms, avgdl)
		phraseCount := idx.phraseCount(docID, terms)
		score *= 1 + idx.phraseBoostAlpha*float64(phraseCount)
		results = append(results, Result{DocID: docID, Score: score})
	}

	sortResults(results)
	return results
}

// SearchPhrase restricts Search's results to documents where the query
// terms occur consecutively, in order, at least once.
func (idx *Index) SearchPhrase(query string) []Result {
	all := idx.Search(query)
	terms := tokenize(query, idx.minWordLength)

	out := make([]Result, 0, len(all))
	for _, r := range all {
		if idx.phraseCount(r.DocID, terms) > 0 {
			out = append(out, r)
		}
	}
	return out
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
}

// candidateDocs is the union of every term's posting bitmap.
func (idx *Index) candidateDocs(terms []string) map[uint32]struct{} {
	union := roaring.New()
	for _, t := range terms {
		if bm, ok := idx.postings[t]; ok {
			union.Or(bm)
		}
	}

	out := make(map[uint32]struct{}, union.GetCardinality())
	it := union.Iterator()
	for it.HasNext() {
		out[it.Next()] = struct{}{}
	}
	return out
}

func (idx *Index) averageDocLength() float64 {
	if idx.totalDocs == 0 {
		return 0
	}
	return float64(idx.totalLen) / float64(idx.totalDocs)
}

// bm25 scores a single document against terms using the standard Okapi
// BM25 formula: sum of idf(t) * tf(t,d)*(k1+1) / (tf(t,d) + k1*(1-b+b*|d|/avgdl)).
func (idx *Index) bm25(docID uint32, terms []string, avgdl float64) float64 {
	docLen := float64(idx.docLength[docID])

	var score float64
	for _, t := range terms {
		bm, ok := idx.postings[t]
		if !ok || !bm.Contains(docID) {
			continue
		}

		tf := float64(idx.termFrequency(docID, t))
		n := float64(bm.GetCardinality())
		idf := math.Log(1 + (float64(idx.totalDocs)-n+0.5)/(n+0.5))

		denom := tf + bm25K1*(1-bm25B+bm25B*docLen/avgdl)
		score += idf * (tf * (bm25K1 + 1)) / denom
	}
	return score
}

func (idx *Index) termFrequency(docID uint32, term string) int {
	if idx.indexPositions {
		if byDoc, ok := idx.positions[term]; ok {
			return len(byDoc[docID])
		}
		return 0
	}
	if bm, ok := idx.postings[term]; ok && bm.Contains(docID) {
		return 1
	}
	return 0
}

// phraseCount counts how many times terms occur as a consecutive run, in
// order, within docID - the raw count the phrase-boost formula scales
// BM25 score by. Returns 0 (no boost) when position indexing is off,
// since a phrase can't be verified without positions.
func (idx *Index) phraseCount(docID uint32, terms []string) int {
	if !idx.indexPositions || len(terms) == 0 {
		return 0
	}

	first, ok := idx.positions[terms[0]]
	if !ok {
		return 0
	}
	starts := first[docID]

	count := 0
	for _, start := range starts {
		matched := true
		for i := 1; i < len(terms); i++ {
			byDoc, ok := idx.positions[terms[i]]
			if !ok {
				matched = false
				break
			}
			if !containsInt(byDoc[docID], start+i) {
				matched = false
				break
			}
		}
		if matched {
			count++
		}
	}
	return count
}

func containsInt(sorted []int, v int) bool {
	i := sort.SearchInts(sorted, v)
	return i < len(sorted) && sorted[i] == v
}
