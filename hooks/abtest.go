package hooks

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/openbid/broker/config"
)

// HookID points to the specific hook defined by the hook execution plan.
type HookID struct {
	ModuleCode   string `json:"module_code"`
	HookImplCode string `json:"hook_impl_code"`
}

func (id HookID) String() string {
	return id.ModuleCode + "." + id.HookImplCode
}

// WeightedList picks an entry by seed, where an entry with weight w owns w
// consecutive seed values. Lookup follows the result convention: an
// out-of-range seed is an error, never a panic.
type WeightedList[T any] struct {
	entries    []T
	boundaries []int
	total      int
}

// NewWeightedList fails fast on negative weights, they indicate a
// deployment bug rather than a runtime condition.
func NewWeightedList[T any](entries []T, weights []int) (*WeightedList[T], error) {
	if len(entries) != len(weights) {
		return nil, fmt.Errorf("weighted list needs one weight per entry, got %d entries and %d weights", len(entries), len(weights))
	}

	list := &WeightedList[T]{entries: entries, boundaries: make([]int, len(weights))}
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("weighted list entry %d has negative weight %d", i, w)
		}
		list.total += w
		list.boundaries[i] = list.total
	}

	if list.total == 0 {
		return nil, fmt.Errorf("weighted list needs a positive total weight")
	}

	return list, nil
}

// TotalWeight returns the sum of all entry weights, the size of the seed space.
func (l *WeightedList[T]) TotalWeight() int {
	return l.total
}

// GetForSeed returns the entry owning the given seed. Valid seeds are
// [0, TotalWeight).
func (l *WeightedList[T]) GetForSeed(seed int) (T, error) {
	var zero T
	if seed < 0 || seed >= l.total {
		return zero, fmt.Errorf("seed %d out of range [0, %d)", seed, l.total)
	}

	for i, boundary := range l.boundaries {
		if seed < boundary {
			return l.entries[i], nil
		}
	}

	// unreachable while boundaries cover [0, total)
	return zero, fmt.Errorf("seed %d not covered", seed)
}

// ABTestSelector substitutes hook ids with one of their configured weighted
// variants. A selector lives for one request: each hook id is drawn once and
// the choice is reused for every stage the module participates in, so
// analytics attribute the request to a single variant. Selection is pure
// given the seed.
type ABTestSelector struct {
	seed    uint64
	tests   map[HookID]*WeightedList[HookID]
	mu      sync.Mutex
	choices map[HookID]HookID
}

// NewABTestSelector validates the configured tests and fails fast on
// negative weights or empty variant lists.
func NewABTestSelector(tests []config.ABTest, seed uint64) (*ABTestSelector, error) {
	selector := &ABTestSelector{
		seed:    seed,
		tests:   make(map[HookID]*WeightedList[HookID], len(tests)),
		choices: make(map[HookID]HookID),
	}

	for _, test := range tests {
		if test.Enabled != nil && !*test.Enabled {
			continue
		}

		variants := make([]HookID, len(test.Variants))
		weights := make([]int, len(test.Variants))
		for i, v := range test.Variants {
			variants[i] = HookID{ModuleCode: v.ModuleCode, HookImplCode: v.HookImplCode}
			weights[i] = v.Weight
		}

		list, err := NewWeightedList(variants, weights)
		if err != nil {
			return nil, fmt.Errorf("abtest for %s.%s: %w", test.ModuleCode, test.HookImplCode, err)
		}

		selector.tests[HookID{ModuleCode: test.ModuleCode, HookImplCode: test.HookImplCode}] = list
	}

	return selector, nil
}

// Select returns the variant drawn for the hook id, or the id itself when no
// test covers it.
func (s *ABTestSelector) Select(id HookID) HookID {
	list, ok := s.tests[id]
	if !ok {
		return id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if chosen, ok := s.choices[id]; ok {
		return chosen
	}

	variant, err := list.GetForSeed(int(s.seed % uint64(list.TotalWeight())))
	if err != nil {
		// cannot happen for a validated list, keep the control hook
		return id
	}

	s.choices[id] = variant
	return variant
}

// Selections returns a copy of the choices drawn so far, for analytics tagging.
func (s *ABTestSelector) Selections() map[HookID]HookID {
	s.mu.Lock()
	defer s.mu.Unlock()

	selections := make(map[HookID]HookID, len(s.choices))
	for id, chosen := range s.choices {
		selections[id] = chosen
	}
	return selections
}

// SeedFromRequest derives a stable selection seed from the request body:
// the same request always lands on the same variant, different requests
// spread across variants per the configured weights.
func SeedFromRequest(body []byte) uint64 {
	h := fnv.New64a()
	h.Write([]byte(gjson.GetBytes(body, "id").String()))

	publisher := gjson.GetBytes(body, "site.publisher.id")
	if !publisher.Exists() {
		publisher = gjson.GetBytes(body, "app.publisher.id")
	}
	h.Write([]byte(publisher.String()))

	return h.Sum64()
}
