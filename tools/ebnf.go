package tools

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/Comcast/rulegraph/core"

	"golang.org/x/exp/ebnf"
)

// ProductionName is the EBNF production name for a rule.
func ProductionName(id core.RuleId) string {
	return "R" + strconv.FormatUint(uint64(id), 10)
}

// EBNF renders the rules reachable from root as EBNF (in the form
// golang.org/x/exp/ebnf reads).  The root's production comes first.
//
//	R0 = R4 R1 R5 .
//	R4 = "a" .
func EBNF(rules *core.Rules, root core.RuleId) string {
	var (
		reachable = rules.Reachable(root)
		ids       = make([]core.RuleId, 0, len(reachable))
		buf       bytes.Buffer
	)
	if reachable[root] {
		ids = append(ids, root)
	}
	for _, id := range rules.Ids() {
		if id != root && reachable[id] {
			ids = append(ids, id)
		}
	}

	for _, id := range ids {
		alts, _ := rules.Get(id)
		ss := make([]string, 0, len(alts))
		for _, alt := range alts {
			switch vv := alt.(type) {
			case core.Literal:
				ss = append(ss, strconv.Quote(string(vv.Symbol)))
			case core.Chain:
				refs := make([]string, len(vv))
				for i, ref := range vv {
					refs[i] = ProductionName(ref)
				}
				ss = append(ss, strings.Join(refs, " "))
			}
		}
		fmt.Fprintf(&buf, "%s = %s .\n", ProductionName(id), strings.Join(ss, " | "))
	}

	return buf.String()
}

// VerifyEBNF parses the EBNF text and checks that every production
// it references is defined and reachable from root's production.
func VerifyEBNF(text string, root core.RuleId) error {
	g, err := ebnf.Parse("rules.ebnf", strings.NewReader(text))
	if err != nil {
		return err
	}
	return ebnf.Verify(g, ProductionName(root))
}
