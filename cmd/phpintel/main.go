/*
phpintel is a command-line front end for the PHP language intelligence
service: it indexes PHP source trees, answers symbol queries, and
reports parse diagnostics, without needing an editor or LSP client in
front of it. Completions are available through pkg/api only.
*/
package main

import (
	"github.com/whit3rabbit/go-phpintel/cmd/phpintel/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
