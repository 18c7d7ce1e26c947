package discovery

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/logger"
	"theo-discovery/internal/text"
)

// ConnectionOptions configures the connection engine.
type ConnectionOptions struct {
	// MinSharedVerses is the edge weight below which projected edges are pruned.
	MinSharedVerses int `validate:"gte=1"`
	// MinDocuments is the smallest component reported.
	MinDocuments int `validate:"gte=2"`
	MaxResults   int `validate:"gte=1"`
	Clock        Clock
}

// DefaultConnectionOptions returns the stock settings.
func DefaultConnectionOptions() ConnectionOptions {
	return ConnectionOptions{MinSharedVerses: 1, MinDocuments: 2, MaxResults: 10}
}

// ConnectionEngine links documents that cite the same scripture references.
type ConnectionEngine struct {
	opts ConnectionOptions
	now  Clock
}

// NewConnectionEngine validates opts and builds the engine.
func NewConnectionEngine(opts ConnectionOptions) (*ConnectionEngine, error) {
	if err := validateOptions(domain.KindConnection, opts); err != nil {
		return nil, err
	}
	return &ConnectionEngine{opts: opts, now: clockOrDefault(opts.Clock)}, nil
}

// Detect projects the document/verse graph onto documents and reports each
// sufficiently large connected component.
func (e *ConnectionEngine) Detect(documents []domain.DocumentEmbedding) ([]domain.Discovery, error) {
	now := e.now()
	if len(documents) < e.opts.MinDocuments {
		return []domain.Discovery{}, nil
	}

	verseSets := make([]map[int]struct{}, len(documents))
	byVerse := make(map[int][]int)
	for i, d := range documents {
		verseSets[i] = make(map[int]struct{}, len(d.VerseIDs))
		for _, v := range d.VerseIDs {
			if _, ok := verseSets[i][v]; ok {
				continue
			}
			verseSets[i][v] = struct{}{}
			byVerse[v] = append(byVerse[v], i)
		}
	}
	if len(byVerse) == 0 {
		logger.Debug("[Connection] No verse references in corpus", "documents", len(documents))
		return []domain.Discovery{}, nil
	}

	g, shared := e.project(len(documents), byVerse)
	components := topo.ConnectedComponents(g)
	groups := make([][]int, 0, len(components))
	for _, comp := range components {
		if len(comp) < e.opts.MinDocuments {
			continue
		}
		members := make([]int, len(comp))
		for i, n := range comp {
			members[i] = int(n.ID())
		}
		sort.Ints(members)
		groups = append(groups, members)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

	out := make([]domain.Discovery, 0, len(groups))
	for _, members := range groups {
		out = append(out, e.componentDiscovery(documents, verseSets, shared, members, now))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	if len(out) > e.opts.MaxResults {
		out = out[:e.opts.MaxResults]
	}
	logger.Debug("[Connection] Graph analysed", "documents", len(documents), "components", len(groups), "reported", len(out))
	return out, nil
}

type docPair struct{ a, b int }

// project builds the document graph weighted by shared-verse count, keeping
// only edges that reach MinSharedVerses. The shared verses of every kept
// pair are returned alongside.
func (e *ConnectionEngine) project(n int, byVerse map[int][]int) (*simple.WeightedUndirectedGraph, map[docPair][]int) {
	verses := make([]int, 0, len(byVerse))
	for v := range byVerse {
		verses = append(verses, v)
	}
	sort.Ints(verses)

	pairs := make(map[docPair][]int)
	for _, v := range verses {
		docs := byVerse[v]
		for i := 0; i < len(docs); i++ {
			for j := i + 1; j < len(docs); j++ {
				p := docPair{docs[i], docs[j]}
				pairs[p] = append(pairs[p], v)
			}
		}
	}

	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	kept := make(map[docPair][]int, len(pairs))
	for p, shared := range pairs {
		if len(shared) < e.opts.MinSharedVerses {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(p.a), simple.Node(p.b), float64(len(shared))))
		kept[p] = shared
	}
	return g, kept
}

func (e *ConnectionEngine) componentDiscovery(documents []domain.DocumentEmbedding, verseSets []map[int]struct{}, shared map[docPair][]int, members []int, now time.Time) domain.Discovery {
	ids := make([]string, len(members))
	verseCount := make(map[int]int)
	topics := text.NewCounter()
	for k, i := range members {
		ids[k] = documents[i].DocumentID
		for v := range verseSets[i] {
			verseCount[v]++
		}
		for _, t := range documentTopics(documents[i]) {
			topics.Add(t)
		}
	}

	var sharedVerses []int
	for v, c := range verseCount {
		if c >= 2 {
			sharedVerses = append(sharedVerses, v)
		}
	}
	sharedVerses = sortedUniqueInts(sharedVerses, 0)

	sharedTopics := []string{}
	for _, t := range topics.MostCommon(0) {
		if topics.Count(t) >= 2 {
			sharedTopics = append(sharedTopics, t)
		}
	}

	edges := []domain.ConnectionEdge{}
	maxWeight := 0
	for x := 0; x < len(members); x++ {
		for y := x + 1; y < len(members); y++ {
			verses, ok := shared[docPair{members[x], members[y]}]
			if !ok {
				continue
			}
			edges = append(edges, domain.ConnectionEdge{
				Source:       documents[members[x]].DocumentID,
				Target:       documents[members[y]].DocumentID,
				SharedVerses: verses,
			})
			if len(verses) > maxWeight {
				maxWeight = len(verses)
			}
		}
	}

	size := len(members)
	density := 2 * float64(len(edges)) / float64(size*(size-1))
	confidence := math.Min(0.95, 0.45+0.1*float64(maxWeight)+0.25*density)
	relevance := math.Min(0.9, 0.4+0.05*float64(size)+0.03*float64(len(sharedVerses))+0.02*float64(len(sharedTopics)))

	var title string
	if size == 2 {
		title = fmt.Sprintf("Connection between %s and %s", displayName(documents[members[0]]), displayName(documents[members[1]]))
	} else {
		title = fmt.Sprintf("Connection cluster spanning %d documents", size)
	}
	description := fmt.Sprintf("%d documents are linked through %d shared scripture references.", size, len(sharedVerses))

	d := newDiscovery(domain.KindConnection, title, description, confidence, relevance, ids, map[string]any{
		"related_documents": ids,
		"shared_verses":     sharedVerses,
		"shared_topics":     sharedTopics,
		"edges":             edges,
		"density":           density,
		"max_edge_weight":   maxWeight,
	}, now)
	d.Connection = &domain.ConnectionDetails{
		RelatedDocuments: ids,
		SharedVerses:     sharedVerses,
		SharedTopics:     sharedTopics,
		Edges:            edges,
		Density:          density,
		MaxEdgeWeight:    maxWeight,
	}
	return d
}

func displayName(d domain.DocumentEmbedding) string {
	if d.Title != "" {
		return d.Title
	}
	return d.DocumentID
}
