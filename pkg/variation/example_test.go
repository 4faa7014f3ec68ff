package variation_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/variation"
)

func ExampleManager_GenerateVariations() {
	sprite := pixel.New(32, 48)
	sprite.FillRect(pixel.Rect{X: 8, Y: 4, W: 16, H: 40}, 0x808080)

	m := variation.NewManager(nil)
	variants, err := m.GenerateVariations(context.Background(), sprite, 3, variation.Config{ColorVariation: 0.1, Seed: 42})
	if err != nil {
		panic(err)
	}
	for _, v := range variants {
		fmt.Println(v.Width, v.Height, variation.ValidateVariation(v) == nil)
	}
	// Output:
	// 32 48 true
	// 32 48 true
	// 32 48 true
}
