package topics

import "math/rand/v2"

// Picker chooses the next topic among the remaining ones.
// remaining is never empty when Pick is called.
type Picker interface {
	Pick(remaining []Topic) Topic
}

// RandomPicker selects uniformly at random.
type RandomPicker struct{}

func (RandomPicker) Pick(remaining []Topic) Topic {
	return remaining[rand.IntN(len(remaining))]
}

// FirstPicker always takes the first remaining topic in catalog order.
type FirstPicker struct{}

func (FirstPicker) Pick(remaining []Topic) Topic {
	return remaining[0]
}
