package cluster

import (
	"math"
	"sort"

	"github.com/docketlabs/docket/backend/pkg/ai"
	"github.com/docketlabs/docket/backend/pkg/common"
	"github.com/docketlabs/docket/backend/pkg/store"
)

// feature is one document reduced to what similarity works on: its entity
// id set and, when available, its stored embedding.
type feature struct {
	doc       common.Document
	entityIDs map[int64]struct{}
	embedding []float32
}

// corpus is the feature view of one recompute run plus the entity
// attributes needed for labeling.
type corpus struct {
	features []feature
	entities map[int64]common.Entity
}

// buildCorpus assembles features in the order of docs, which the store
// guarantees to be upload time ascending.
func buildCorpus(docs []common.Document, occurrences []store.DocumentEntity, embeddings map[int64][]float32) corpus {
	known := make(map[int64]struct{}, len(docs))
	for _, d := range docs {
		known[d.ID] = struct{}{}
	}

	entitySets := make(map[int64]map[int64]struct{}, len(docs))
	entities := make(map[int64]common.Entity)
	for _, occ := range occurrences {
		if _, ok := known[occ.DocumentID]; !ok {
			continue
		}
		set, ok := entitySets[occ.DocumentID]
		if !ok {
			set = map[int64]struct{}{}
			entitySets[occ.DocumentID] = set
		}
		set[occ.Entity.ID] = struct{}{}
		entities[occ.Entity.ID] = occ.Entity
	}

	features := make([]feature, 0, len(docs))
	for _, d := range docs {
		set := entitySets[d.ID]
		if set == nil {
			set = map[int64]struct{}{}
		}
		features = append(features, feature{
			doc:       d,
			entityIDs: set,
			embedding: embeddings[d.ID],
		})
	}
	return corpus{features: features, entities: entities}
}

// protoCluster is an open cluster during the greedy pass. The entity union
// and embedding centroid together form its representative.
type protoCluster struct {
	members  []int
	entities map[int64]struct{}
	centroid []float32
	embedded int
}

func newProtoCluster(f feature, idx int) *protoCluster {
	p := &protoCluster{
		members:  []int{idx},
		entities: map[int64]struct{}{},
	}
	for id := range f.entityIDs {
		p.entities[id] = struct{}{}
	}
	if f.embedding != nil {
		p.centroid = append([]float32(nil), f.embedding...)
		p.embedded = 1
	}
	return p
}

// similarity compares a document against the cluster representative:
// cosine against the centroid when both sides carry embeddings, Jaccard
// over entity sets otherwise.
func (p *protoCluster) similarity(f feature) float64 {
	if f.embedding != nil && p.centroid != nil {
		return ai.Cosine(f.embedding, p.centroid)
	}
	return jaccard(f.entityIDs, p.entities)
}

func (p *protoCluster) join(f feature, idx int) {
	p.members = append(p.members, idx)
	for id := range f.entityIDs {
		p.entities[id] = struct{}{}
	}
	if f.embedding == nil {
		return
	}
	if p.centroid == nil {
		p.centroid = append([]float32(nil), f.embedding...)
		p.embedded = 1
		return
	}
	if len(p.centroid) != len(f.embedding) {
		return
	}
	n := float32(p.embedded)
	for i := range p.centroid {
		p.centroid[i] = (p.centroid[i]*n + f.embedding[i]) / (n + 1)
	}
	p.embedded++
}

// greedyPass assigns each document to the most similar open cluster when
// that similarity reaches the threshold, otherwise opens a new cluster.
// Ties go to the earliest cluster, so a fixed input always produces the
// same partition.
func greedyPass(features []feature, threshold float64) []*protoCluster {
	clusters := []*protoCluster{}
	for i, f := range features {
		best, bestSim := -1, 0.0
		for ci, c := range clusters {
			if sim := c.similarity(f); sim > bestSim {
				best, bestSim = ci, sim
			}
		}
		if best >= 0 && bestSim >= threshold {
			clusters[best].join(f, i)
		} else {
			clusters = append(clusters, newProtoCluster(f, i))
		}
	}
	return clusters
}

func jaccard(a, b map[int64]struct{}) float64 {
	intersection := 0
	for id := range a {
		if _, ok := b[id]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// pairSimilarity is the document-to-document measure reported on cluster
// members, embeddings when both documents have one, entity sets otherwise.
func pairSimilarity(a, b feature) float64 {
	if a.embedding != nil && b.embedding != nil {
		return ai.Cosine(a.embedding, b.embedding)
	}
	return jaccard(a.entityIDs, b.entityIDs)
}

// memberList computes each member's mean similarity to the rest of its
// cluster, rounded to three decimals, ordered most-central first.
func memberList(c corpus, p *protoCluster) []common.ClusterMember {
	members := make([]common.ClusterMember, 0, len(p.members))
	for _, i := range p.members {
		f := c.features[i]
		sim := 1.0
		if len(p.members) > 1 {
			sum := 0.0
			for _, j := range p.members {
				if i == j {
					continue
				}
				sum += pairSimilarity(f, c.features[j])
			}
			sim = sum / float64(len(p.members)-1)
		}
		members = append(members, common.ClusterMember{
			DocumentID: f.doc.ID,
			Name:       f.doc.Name,
			Similarity: math.Round(sim*1000) / 1000,
		})
	}
	sort.Slice(members, func(a, b int) bool {
		if members[a].Similarity != members[b].Similarity {
			return members[a].Similarity > members[b].Similarity
		}
		return members[a].DocumentID < members[b].DocumentID
	})
	return members
}

// keywords labels a cluster with the names of its top shared entities,
// ranked by member frequency, then importance, then name.
func keywords(c corpus, p *protoCluster, limit int) []string {
	freq := make(map[int64]int)
	for _, i := range p.members {
		for id := range c.features[i].entityIDs {
			freq[id]++
		}
	}

	ids := make([]int64, 0, len(freq))
	for id := range freq {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		ea, eb := c.entities[ids[a]], c.entities[ids[b]]
		if freq[ids[a]] != freq[ids[b]] {
			return freq[ids[a]] > freq[ids[b]]
		}
		if ea.Importance != eb.Importance {
			return ea.Importance > eb.Importance
		}
		if ea.Name != eb.Name {
			return ea.Name < eb.Name
		}
		return ids[a] < ids[b]
	})

	if len(ids) > limit {
		ids = ids[:limit]
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, c.entities[id].Name)
	}
	return names
}
