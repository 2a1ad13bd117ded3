package tree_test

import (
	"fmt"

	"github.com/matzehuels/ghgraph/pkg/tree"
)

func ExampleFlatten() {
	t := tree.New(tree.KindRepo, tree.Record{RemoteID: 1, Label: "octo/hello"})
	users, _ := t.Attach(t.Root(), []tree.Record{
		{RemoteID: 5, Label: "alice", Size: 10},
		{RemoteID: 7, Size: 3, Anonymous: true},
	})
	_, _ = t.Attach(users[0], []tree.Record{{RemoteID: 99, Label: "alice/tools", Size: 16}})

	for _, n := range tree.Flatten(t.Root()) {
		fmt.Printf("%s %s %.1f\n", n.ID, n.Kind, tree.Radius(n))
	}
	fmt.Println("links:", len(tree.Links(tree.Flatten(t.Root()))))
	// Output:
	// 1-5-99 repo 2.0
	// 1-5 user 4.5
	// 1-7 user 0.9
	// 1 repo 4.5
	// links: 3
}

func ExampleToggle() {
	t := tree.New(tree.KindRepo, tree.Record{RemoteID: 1, Label: "octo/hello"})
	root := t.Root()

	fmt.Println(tree.Toggle(root))
	_, _ = t.Attach(root, []tree.Record{{RemoteID: 5, Label: "alice"}})
	fmt.Println(tree.Toggle(root), root.State())
	fmt.Println(tree.Toggle(root), root.State())
	// Output:
	// fetch
	// collapse collapsed
	// expand expanded
}
