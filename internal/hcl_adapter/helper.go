package hcl_adapter

import (
	"context"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"go.uber.org/zap"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The decoder fills omitted hcl.Expression fields with a zero-width null
// expression, so a nil check is not enough: a real attribute occupies bytes in
// the file while the placeholder's range starts and ends on the same byte.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		zap.String("attribute", attrName),
		zap.String("hcl_range", r.String()),
		zap.Bool("is_defined", defined),
	)
	return defined
}

// functions are the functions callable from lfdeploy.hcl expressions.
func functions() map[string]function.Function {
	return map[string]function.Function{
		"lower":   stdlib.LowerFunc,
		"upper":   stdlib.UpperFunc,
		"format":  stdlib.FormatFunc,
		"replace": stdlib.ReplaceFunc,
	}
}

// newEvalContext exposes home, root and env to file-level expressions.
func newEvalContext(home, root string, env map[string]string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"home": cty.StringVal(home),
			"root": cty.StringVal(root),
			"env":  stringMap(env),
		},
		Functions: functions(),
	}
}

func stringMap(m map[string]string) cty.Value {
	if len(m) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make(map[string]cty.Value, len(keys))
	for _, k := range keys {
		vals[k] = cty.StringVal(m[k])
	}
	return cty.MapVal(vals)
}
