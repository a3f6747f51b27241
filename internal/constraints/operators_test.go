package constraints

import (
	"testing"

	"github.com/jacoelho/qarray/internal/condition"
	"github.com/jacoelho/qarray/internal/config"
	"github.com/jacoelho/qarray/operator"
)

func TestCommandAndEngineShareOperatorSet(t *testing.T) {
	t.Parallel()

	for _, token := range operator.Default().Tokens() {
		t.Run(token, func(t *testing.T) {
			t.Parallel()

			clause, err := config.ParseClause("a " + token + " 1")
			if err != nil {
				t.Fatalf("config.ParseClause(%q) error = %v", token, err)
			}

			groups := []condition.Group{{{Path: clause.Path, Token: clause.Token, Value: clause.Value}}}
			if _, err := condition.Compile(groups, nil, "."); err != nil {
				t.Fatalf("condition.Compile(%q) error = %v", token, err)
			}

			if _, result := config.Parse([]string{"qarray", "-where", "a " + token + " 1"}); result != nil {
				t.Fatalf("config.Parse(%q) exit = %q", token, result.Message)
			}
		})
	}
}

func TestUnknownOperatorRejectedAcrossBoundaries(t *testing.T) {
	t.Parallel()

	const token = "~~"

	if _, err := operator.Resolve(token); err == nil {
		t.Fatalf("operator.Resolve(%q) expected error", token)
	}

	groups := []condition.Group{{{Path: "a", Token: token, Value: 1}}}
	if _, err := condition.Compile(groups, nil, "."); err == nil {
		t.Fatalf("condition.Compile(%q) expected error", token)
	}

	_, result := config.Parse([]string{"qarray", "-where", "a " + token + " 1"})
	if result == nil || result.ExitCode != 1 {
		t.Fatalf("config.Parse(%q) expected exit code 1, got %+v", token, result)
	}
}
