package main

import (
	"github.com/coderunner/agentcore/internal/cli"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cli.SetVersion(version, commit)
	cli.Execute()
}
