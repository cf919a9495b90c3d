package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/lfdeploy/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// exprNamer evaluates the artifact_name expression once per role, with the
// program and role variables added to the file's evaluation context.
type exprNamer struct {
	expr hcl.Expression
	base *hcl.EvalContext
}

func (n *exprNamer) ArtifactName(program string, role model.Role) (string, error) {
	ectx := n.base.NewChild()
	ectx.Variables = map[string]cty.Value{
		"program": cty.StringVal(program),
		"role":    cty.StringVal(string(role)),
	}

	val, diags := n.expr.Value(ectx)
	if diags.HasErrors() {
		return "", diags
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("artifact_name must be a string: %w", err)
	}
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("artifact_name evaluated to null")
	}
	return val.AsString(), nil
}
