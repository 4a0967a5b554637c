package lshdedup_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/lshdedup"
)

func ExampleDeduplicate() {
	records := []string{
		"the cat sat",
		"the cat sat on the mat",
		"completely different text",
	}

	res, err := lshdedup.Deduplicate(context.Background(), records,
		lshdedup.WithNumPerm(4),
		lshdedup.WithNumBands(2),
		lshdedup.WithThreshold(0.4),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Groups())
	fmt.Println(res.Summary())
	// Output:
	// [[0 1] [2]]
	// Total: 3, Unique: 2, Diff: 1
}

func ExampleNew() {
	d := lshdedup.New().
		NumPerm(64).
		NumBands(16).
		Threshold(0.5).
		MustBuild()

	res, err := d.Run(context.Background(), []string{
		"to be or not to be",
		"to be or not to be",
		"something else entirely",
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, g := range res.Groups() {
		fmt.Println(g)
	}
	// Output:
	// [0 1]
	// [2]
}

func ExampleResult_Search() {
	res, err := lshdedup.Deduplicate(context.Background(), []string{
		"the cat sat",
		"the cat sat on the mat",
		"completely different text",
	}, lshdedup.WithNumPerm(4), lshdedup.WithNumBands(2))
	if err != nil {
		log.Fatal(err)
	}

	for _, m := range res.Search("the cat sat").MustExecute(context.Background()) {
		fmt.Printf("%d %.2f\n", m.ID, m.Similarity)
	}
	// Output:
	// 0 1.00
	// 1 0.75
}
