package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/coderunner/agentcore/agentmodel"
)

// thinkingFlag implements pflag.Value directly (rather than a plain
// cobra StringVar) so --thinking validates against the known level
// names at parse time instead of at loop-construction time.
type thinkingFlag struct {
	level agentmodel.ThinkingLevel
	set   bool
}

var thinkingLevelByName = map[string]agentmodel.ThinkingLevel{
	"off":     agentmodel.ThinkingOff,
	"minimal": agentmodel.ThinkingMinimal,
	"low":     agentmodel.ThinkingLow,
	"medium":  agentmodel.ThinkingMedium,
	"high":    agentmodel.ThinkingHigh,
	"xhigh":   agentmodel.ThinkingXHigh,
}

func (f *thinkingFlag) String() string {
	if !f.set {
		return ""
	}
	return f.level.String()
}

func (f *thinkingFlag) Set(value string) error {
	level, ok := thinkingLevelByName[value]
	if !ok {
		return fmt.Errorf("unknown thinking level %q (want one of off,minimal,low,medium,high,xhigh)", value)
	}
	f.level = level
	f.set = true
	return nil
}

func (f *thinkingFlag) Type() string { return "thinkingLevel" }

var _ pflag.Value = (*thinkingFlag)(nil)

var runThinking = &thinkingFlag{}
