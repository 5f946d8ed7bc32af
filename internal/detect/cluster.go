package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mailsift/mailsift/internal/cluster"
	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

// partitionKs are the fixed cluster counts tried by the partition pass.
var partitionKs = []int{3, 5, 8}

// partitionMinCorpus gates the partition pass: below this corpus size the
// density pass alone is enough.
const partitionMinCorpus = 10

// themeLookup maps a dominant-sender keyword to a cluster theme.
var themeLookup = []struct {
	keyword string
	theme   string
}{
	{"newsletter", "Newsletters"},
	{"digest", "Newsletters"},
	{"noreply", "Notifications"},
	{"no-reply", "Notifications"},
	{"notification", "Notifications"},
	{"order", "Receipts & Orders"},
	{"receipt", "Receipts & Orders"},
	{"billing", "Receipts & Orders"},
	{"facebook", "Social Media"},
	{"twitter", "Social Media"},
	{"linkedin", "Social Media"},
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "for": true, "on": true, "is": true, "your": true,
	"you": true, "re": true, "fwd": true, "with": true, "at": true, "from": true,
}

// ClusterDetector groups records by embedding similarity using a
// density-based pass and, on larger corpora, partition passes at fixed
// cluster counts.
type ClusterDetector struct {
	minPatternSize int
	density        core.Clusterer
	partition      func(k int) core.Clusterer
	logger         *zap.Logger
}

// NewClusterDetector creates a new embedding-cluster detector with the
// default strategies.
func NewClusterDetector(minPatternSize int, logger *zap.Logger) *ClusterDetector {
	return &ClusterDetector{
		minPatternSize: minPatternSize,
		density:        cluster.NewDBSCAN(cluster.DefaultEps, minPatternSize),
		partition:      func(k int) core.Clusterer { return cluster.NewKMeans(k) },
		logger:         logger,
	}
}

// NewClusterDetectorWithStrategies creates a cluster detector with
// injected strategies, for tests and alternative algorithms.
func NewClusterDetectorWithStrategies(minPatternSize int, density core.Clusterer, partition func(k int) core.Clusterer, logger *zap.Logger) *ClusterDetector {
	return &ClusterDetector{
		minPatternSize: minPatternSize,
		density:        density,
		partition:      partition,
		logger:         logger,
	}
}

// Name identifies the detector family
func (d *ClusterDetector) Name() string {
	return "cluster"
}

// Detect runs both clustering strategies over standardized embedding
// vectors and emits a pattern per sufficiently large cluster.
func (d *ClusterDetector) Detect(records []core.EmailRecord, features map[string]core.EmailFeatures, embeddings map[string]*core.EmailEmbedding) []core.EmailPattern {
	// Records without a usable vector (missing, or a zero-vector failure
	// placeholder) are excluded from clustering.
	var usable []core.EmailRecord
	var vectors [][]float64
	for _, record := range records {
		emb, ok := embeddings[record.ID]
		if !ok || emb == nil || isZeroVector(emb.Vector) {
			continue
		}
		usable = append(usable, record)
		vectors = append(vectors, emb.Vector)
	}
	if len(usable) < d.minPatternSize {
		return nil
	}

	standardized := cluster.Standardize(vectors)

	var patterns []core.EmailPattern
	for _, group := range d.density.Cluster(standardized) {
		if p := d.clusterPattern(usable, group, len(records), "density"); p != nil {
			patterns = append(patterns, *p)
		}
	}

	if len(usable) > partitionMinCorpus {
		for _, k := range partitionKs {
			for _, group := range d.partition(k).Cluster(standardized) {
				if p := d.clusterPattern(usable, group, len(records), "partition"); p != nil {
					patterns = append(patterns, *p)
				}
			}
		}
	}

	return patterns
}

// clusterPattern builds a pattern from a cluster of indices into usable,
// or nil when the cluster is too small.
func (d *ClusterDetector) clusterPattern(usable []core.EmailRecord, indices []int, totalUniverse int, strategy string) *core.EmailPattern {
	if len(indices) < d.minPatternSize {
		return nil
	}

	members := make([]core.EmailRecord, 0, len(indices))
	for _, i := range indices {
		members = append(members, usable[i])
	}

	dominantSender, senderShare := dominantSender(members)
	keywords := commonKeywords(members)
	labels := commonLabels(members)

	// Common keywords only need half the cluster, but a rule anchored on
	// them must hold for every example carried on the pattern. Sample
	// examples from the members that actually contain one.
	exampleMembers := members
	if len(keywords) > 0 {
		anchored := make([]core.EmailRecord, 0, len(members))
		for _, r := range members {
			if containsAny(strings.ToLower(r.Subject+" "+r.Snippet), keywords) {
				anchored = append(anchored, r)
			}
		}
		if len(anchored) > 0 {
			exampleMembers = anchored
		}
	}

	confidence := 0.6
	if senderShare >= 0.7 {
		confidence += 0.2
	}
	if len(keywords) > 0 {
		confidence += 0.1
	}
	if len(labels) > 0 {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	theme := inferTheme(dominantSender, senderShare, keywords, labels, len(members))

	return &core.EmailPattern{
		PatternType:   core.PatternTypeCluster,
		Description:   theme,
		EmailCount:    len(members),
		TotalUniverse: totalUniverse,
		Confidence:    confidence,
		Characteristics: core.PatternCharacteristics{
			Cluster: &core.ClusterCharacteristics{
				Theme:          theme,
				Strategy:       strategy,
				DominantSender: dominantSender,
				SenderShare:    senderShare,
				CommonKeywords: keywords,
				CommonLabels:   labels,
			},
		},
		ExampleEmailIDs: exampleIDs(exampleMembers),
	}
}

// inferTheme names a cluster from its dominant sender, falling back to
// keywords and then a generic label.
func inferTheme(dominantSender string, senderShare float64, keywords, labels []string, size int) string {
	if senderShare >= 0.5 {
		lower := strings.ToLower(dominantSender)
		for _, entry := range themeLookup {
			if strings.Contains(lower, entry.keyword) {
				return entry.theme
			}
		}
	}
	for _, kw := range keywords {
		for _, entry := range themeLookup {
			if kw == entry.keyword {
				return entry.theme
			}
		}
	}
	if len(labels) > 0 {
		return labels[0]
	}
	return fmt.Sprintf("Similar Content (%d emails)", size)
}

func dominantSender(members []core.EmailRecord) (string, float64) {
	counts := make(map[string]int)
	for _, r := range members {
		counts[senderAddress(r.Sender)]++
	}
	best, bestCount := "", 0
	for _, addr := range sortedKeys(counts) {
		if counts[addr] > bestCount {
			best, bestCount = addr, counts[addr]
		}
	}
	if best == "" {
		return "", 0
	}
	return best, float64(bestCount) / float64(len(members))
}

// commonKeywords returns subject words shared by at least half the
// cluster, most frequent first.
func commonKeywords(members []core.EmailRecord) []string {
	counts := make(map[string]int)
	for _, r := range members {
		seen := make(map[string]bool)
		for _, word := range strings.Fields(strings.ToLower(r.Subject)) {
			word = strings.Trim(word, `.,:;!?"'()[]#`)
			if len(word) < 3 || stopwords[word] || seen[word] {
				continue
			}
			seen[word] = true
			counts[word]++
		}
	}

	threshold := (len(members) + 1) / 2
	var shared []string
	for word, count := range counts {
		if count >= threshold {
			shared = append(shared, word)
		}
	}
	sort.Slice(shared, func(i, j int) bool {
		if counts[shared[i]] != counts[shared[j]] {
			return counts[shared[i]] > counts[shared[j]]
		}
		return shared[i] < shared[j]
	})
	if len(shared) > 5 {
		shared = shared[:5]
	}
	return shared
}

// commonLabels returns labels carried by every member of the cluster,
// skipping mailbox-state labels.
func commonLabels(members []core.EmailRecord) []string {
	if len(members) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, r := range members {
		seen := make(map[string]bool)
		for _, label := range r.Labels {
			if label == "" || label == "INBOX" || label == "UNREAD" || seen[label] {
				continue
			}
			seen[label] = true
			counts[label]++
		}
	}
	var shared []string
	for _, label := range sortedKeys(counts) {
		if counts[label] == len(members) {
			shared = append(shared, label)
		}
	}
	return shared
}

func isZeroVector(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
