package integrations_test

import (
	"fmt"

	"github.com/matzehuels/ghgraph/pkg/integrations"
)

func ExamplePathEscape() {
	// Path segments are escaped before they are spliced into API URLs
	fmt.Println(integrations.PathEscape("octocat"))
	fmt.Println(integrations.PathEscape("a b/c"))
	// Output:
	// octocat
	// a%20b%2Fc
}
