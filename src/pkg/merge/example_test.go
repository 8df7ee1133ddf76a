package merge_test

import (
	"fmt"

	"github.com/gh-nvat/notesync/src/pkg/merge"
)

// ExampleRender merges a locally edited note with its remote version
func ExampleRender() {
	local := "# Groceries\n- milk\n- eggs\n- bread\n"
	remote := "# Groceries\n- milk\n- oat milk\n- bread\n"

	fmt.Println(merge.Render(local, remote))
	// Output:
	// # Groceries
	// - milk
	// <<<<<<< HEAD
	// - eggs
	// =======
	// - oat milk
	// >>>>>>>
	// - bread
}

// ExampleScan lists the conflicts left in a merged note
func ExampleScan() {
	doc := "title\n<<<<<<< HEAD\nmine\n=======\ntheirs\n>>>>>>>\nfooter"

	for _, c := range merge.Scan(doc).Conflicts {
		fmt.Printf("lines %d-%d: %v vs %v\n", c.StartLine, c.EndLine, c.Original, c.Modified)
	}
	// Output:
	// lines 2-6: [mine] vs [theirs]
}
