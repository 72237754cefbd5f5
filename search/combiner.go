// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"math"
	"strings"

	"github.com/poiesic/docrag/core"
)

const (
	// minCandidatePool is the smallest ranked prefix considered for
	// service representation, even when topK is lower.
	minCandidatePool = 5

	// serviceShareTarget is the fraction of the result slots reserved
	// for documents of the mentioned services.
	serviceShareTarget = 0.6

	// serviceFloorMin guarantees at least this many service documents
	// when that many exist in the candidate pool.
	serviceFloorMin = 2
)

// combineResults selects the final topK results from the ranked candidate
// list. When the query mentions catalog services, documents of those services
// get a guaranteed minimum representation: they are drawn from the top
// max(topK, 5) candidates, capped by how many are actually available, and
// lead the output ahead of better-scoring documents of other services. The
// remaining slots are filled from the other candidates in rank order; when
// those run out the selection stays at the service share.
func combineResults(ranked []core.ScoredDocument, services []string, topK int) []core.ScoredDocument {
	if topK <= 0 {
		return nil
	}
	if len(services) == 0 {
		if len(ranked) > topK {
			ranked = ranked[:topK]
		}
		return ranked
	}

	poolSize := topK
	if poolSize < minCandidatePool {
		poolSize = minCandidatePool
	}
	if poolSize > len(ranked) {
		poolSize = len(ranked)
	}
	pool := ranked[:poolSize]

	serviceSet := make(map[string]struct{}, len(services))
	for _, svc := range services {
		serviceSet[svc] = struct{}{}
	}

	var svcDocs, otherDocs []core.ScoredDocument
	for _, sd := range pool {
		if _, ok := serviceSet[strings.ToUpper(sd.Product)]; ok {
			svcDocs = append(svcDocs, sd)
		} else {
			otherDocs = append(otherDocs, sd)
		}
	}

	take := int(math.Ceil(float64(topK) * serviceShareTarget))
	if take > len(svcDocs) {
		take = len(svcDocs)
	}
	if take < serviceFloorMin {
		take = serviceFloorMin
	}
	if take > len(svcDocs) {
		take = len(svcDocs)
	}

	selected := make([]core.ScoredDocument, 0, topK)
	selected = append(selected, svcDocs[:take]...)
	for _, sd := range otherDocs {
		if len(selected) >= topK {
			break
		}
		selected = append(selected, sd)
	}
	return selected
}
