// GoFresh tracks when MySQL table statistics were last computed and how
// stale they have become since.
package main

import (
	"github.com/dbsmedya/gofresh/cmd/gofresh/cmd"
)

func main() {
	cmd.Execute()
}
