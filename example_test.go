package orca_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/orca"
	"github.com/aretw0/orca/pkg/domain"
)

// ExampleNew shows the built-in catalog served when no path is given.
func ExampleNew() {
	engine, err := orca.New(context.Background(), "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(engine.Catalog().Keys())
	// Output: [palet kasa kereste kontrplak lata ikinciel]
}

// ExampleEngine_SetFields fills the specification of a pallet order in one
// call. Answers are validated together and applied only when all pass.
func ExampleEngine_SetFields() {
	ctx := context.Background()
	engine, err := orca.New(ctx, "")
	if err != nil {
		log.Fatal(err)
	}

	state, _ := engine.Start(ctx, "example", "")
	state, _ = engine.Navigate(ctx, state, "")
	state, _ = engine.SelectCategory(ctx, state, "palet")

	rejected, err := engine.SetFields(ctx, state, map[string]string{"quantity": "çok"})
	fmt.Println(err != nil, len(rejected.Errors))

	state, _ = engine.SetFields(ctx, state, map[string]string{"subcategory": "1", "quantity": "30"})
	fmt.Println(state.Draft.Product.Subcategory, state.Draft.Product.Quantity, state.Draft.Product.BelowMinimum)

	state, _ = engine.Cancel(ctx, state)
	fmt.Println(state.Status == domain.StatusTerminated)
	// Output:
	// true 1
	// Ahşap Palet 30 true
	// true
}
