// Package filterexpr binds a restricted CEL filter and an order_by list onto a
// plain params struct. Filters are conjunctions of field comparisons against
// literals; anything else is rejected.
package filterexpr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Query is implemented by inputs that carry raw filter and order_by strings.
type Query interface {
	GetFilter() string
	GetOrderBy() string
}

// ValueKind describes the kind of literal a field accepts.
type ValueKind string

const (
	KindString ValueKind = "string"
	KindNumber ValueKind = "number"
	KindBool   ValueKind = "bool"
)

// Op is a supported comparison.
type Op string

const (
	OpEQ       Op = "=="
	OpGT       Op = ">"
	OpGTE      Op = ">="
	OpLT       Op = "<"
	OpLTE      Op = "<="
	OpSW       Op = "startsWith"
	OpContains Op = "contains"
	OpIN       Op = "in"
)

// SetterFunc assigns a literal to a params field when plain assignment does not fit.
type SetterFunc func(field reflect.Value, value any) error

// FieldRule maps a filter identifier to params struct fields, one per allowed operator.
type FieldRule struct {
	Kind   ValueKind
	Ops    map[Op]string
	Setter SetterFunc
}

// Schema lists the filterable and orderable fields of a resource.
type Schema struct {
	Fields map[string]FieldRule
	Order  OrderSchema
}

// Bind parses q's filter and order_by into binding. The params struct receives
// filter values in the fields named by the schema and the ordering in an
// `Order []OrderKey` field when the schema declares order keys.
func Bind[Q Query, P any](q Q, binding *P, schema Schema) error {
	if binding == nil {
		return errors.New("binding must not be nil")
	}
	if err := BindFilter(q.GetFilter(), binding, schema); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if len(schema.Order.Fields) == 0 {
		if strings.TrimSpace(q.GetOrderBy()) != "" {
			return errors.New("order_by: ordering is not supported")
		}
		return nil
	}
	keys, err := ParseOrderBy(q.GetOrderBy(), schema.Order)
	if err != nil {
		return fmt.Errorf("order_by: %w", err)
	}
	return setOrder(binding, keys)
}

// BindFilter populates binding from a filter expression. An empty filter is a no-op.
func BindFilter(filter string, binding any, schema Schema) error {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil
	}
	if len(schema.Fields) == 0 {
		return errors.New("filter schema has no fields defined")
	}

	dest, err := structTarget(binding)
	if err != nil {
		return err
	}

	env, err := buildEnv(schema.Fields)
	if err != nil {
		return err
	}
	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return fmt.Errorf("failed to convert AST: %w", err)
	}
	conjuncts, err := extractConjuncts(parsed.GetExpr())
	if err != nil {
		return err
	}

	for _, expr := range conjuncts {
		pred, err := parsePredicate(expr)
		if err != nil {
			return err
		}
		rule, ok := schema.Fields[pred.Field]
		if !ok {
			return fmt.Errorf("field %q is not allowed", pred.Field)
		}
		target, ok := rule.Ops[pred.Op]
		if !ok {
			return fmt.Errorf("operator %q is not allowed for field %q", string(pred.Op), pred.Field)
		}
		if err := validateLiteral(rule.Kind, pred.Op, pred.Value); err != nil {
			return fmt.Errorf("field %q: %w", pred.Field, err)
		}

		field := dest.FieldByName(target)
		if !field.IsValid() {
			return fmt.Errorf("params struct %s has no field named %q", dest.Type(), target)
		}
		if !field.CanSet() {
			return fmt.Errorf("cannot set field %q on params struct", target)
		}
		if rule.Setter != nil {
			if err := callSetter(rule.Setter, field, pred.Value); err != nil {
				return fmt.Errorf("setter for field %q failed: %w", target, err)
			}
			continue
		}
		if err := assignValue(field, pred.Value); err != nil {
			return fmt.Errorf("failed to assign field %q: %w", target, err)
		}
	}
	return nil
}

func structTarget(binding any) (reflect.Value, error) {
	rv := reflect.ValueOf(binding)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, errors.New("binding must be a non-nil pointer")
	}
	dest := rv.Elem()
	if dest.Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("binding must point to a struct")
	}
	return dest, nil
}

type predicate struct {
	Field string
	Op    Op
	Value any
}

func buildEnv(fields map[string]FieldRule) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, rule := range fields {
		celType, err := celTypeForKind(rule.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func celTypeForKind(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindNumber:
		return cel.DoubleType, nil
	case KindBool:
		return cel.BoolType, nil
	default:
		return nil, fmt.Errorf("unsupported field kind %s", kind)
	}
}

// extractConjuncts flattens nested && calls.
func extractConjuncts(expr *exprpb.Expr) ([]*exprpb.Expr, error) {
	if expr == nil {
		return nil, errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		return []*exprpb.Expr{expr}, nil
	}

	switch call.Function {
	case "_&&_":
		if len(call.Args) < 2 || call.Target != nil {
			return nil, errors.New("logical AND must have at least two operands")
		}
		var out []*exprpb.Expr
		for _, arg := range call.Args {
			conjuncts, err := extractConjuncts(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, conjuncts...)
		}
		return out, nil
	case "_||_", "_?_:_", "!_":
		return nil, fmt.Errorf("logical operator %q is not supported; only AND is allowed", call.Function)
	default:
		return []*exprpb.Expr{expr}, nil
	}
}

func parsePredicate(expr *exprpb.Expr) (predicate, error) {
	if ident := expr.GetIdentExpr(); ident != nil {
		// a bare bool field reads as field == true
		return predicate{Field: ident.GetName(), Op: OpEQ, Value: true}, nil
	}
	call := expr.GetCallExpr()
	if call == nil {
		return predicate{}, errors.New("unsupported expression; expected comparison or function call")
	}

	switch call.Function {
	case "_==_":
		return parseBinary(call, OpEQ)
	case "_>_":
		return parseBinary(call, OpGT)
	case "_>=_":
		return parseBinary(call, OpGTE)
	case "_<_":
		return parseBinary(call, OpLT)
	case "_<=_":
		return parseBinary(call, OpLTE)
	case "@in":
		return parseIn(call)
	case "startsWith":
		return parseStringCall(call, OpSW)
	case "contains":
		return parseStringCall(call, OpContains)
	default:
		return predicate{}, fmt.Errorf("function %q is not supported", call.Function)
	}
}

func parseBinary(call *exprpb.Expr_Call, op Op) (predicate, error) {
	if call.Target != nil || len(call.Args) != 2 {
		return predicate{}, fmt.Errorf("operator %q expects two operands", string(op))
	}
	field, err := parseFieldIdent(call.Args[0])
	if err != nil {
		return predicate{}, err
	}
	value, err := parseLiteral(call.Args[1])
	if err != nil {
		return predicate{}, err
	}
	return predicate{Field: field, Op: op, Value: value}, nil
}

func parseIn(call *exprpb.Expr_Call) (predicate, error) {
	if call.Target != nil || len(call.Args) != 2 {
		return predicate{}, errors.New("in operator expects two operands")
	}
	field, err := parseFieldIdent(call.Args[0])
	if err != nil {
		return predicate{}, err
	}
	value, err := parseLiteral(call.Args[1])
	if err != nil {
		return predicate{}, err
	}
	return predicate{Field: field, Op: OpIN, Value: value}, nil
}

// parseStringCall handles receiver-style string functions such as title.startsWith('A').
func parseStringCall(call *exprpb.Expr_Call, op Op) (predicate, error) {
	if call.Target == nil || len(call.Args) != 1 {
		return predicate{}, fmt.Errorf("%s must be called on a field with one argument", string(op))
	}
	field, err := parseFieldIdent(call.Target)
	if err != nil {
		return predicate{}, err
	}
	value, err := parseLiteral(call.Args[0])
	if err != nil {
		return predicate{}, err
	}
	str, ok := value.(string)
	if !ok {
		return predicate{}, fmt.Errorf("%s requires a string literal argument", string(op))
	}
	return predicate{Field: field, Op: op, Value: str}, nil
}

func parseFieldIdent(expr *exprpb.Expr) (string, error) {
	ident := expr.GetIdentExpr()
	if ident == nil {
		return "", errors.New("left-hand side must be an identifier")
	}
	return ident.GetName(), nil
}

func parseLiteral(expr *exprpb.Expr) (any, error) {
	if constant := expr.GetConstExpr(); constant != nil {
		switch constant.ConstantKind.(type) {
		case *exprpb.Constant_StringValue:
			return constant.GetStringValue(), nil
		case *exprpb.Constant_BoolValue:
			return constant.GetBoolValue(), nil
		case *exprpb.Constant_Int64Value:
			return float64(constant.GetInt64Value()), nil
		case *exprpb.Constant_Uint64Value:
			return float64(constant.GetUint64Value()), nil
		case *exprpb.Constant_DoubleValue:
			return constant.GetDoubleValue(), nil
		default:
			return nil, fmt.Errorf("literal type %T is not supported", constant.ConstantKind)
		}
	}

	if list := expr.GetListExpr(); list != nil {
		elements := list.GetElements()
		values := make([]string, len(elements))
		for i, elem := range elements {
			val, err := parseLiteral(elem)
			if err != nil {
				return nil, fmt.Errorf("list literal element %d: %w", i, err)
			}
			str, ok := val.(string)
			if !ok {
				return nil, errors.New("list literal elements must be strings")
			}
			values[i] = str
		}
		return values, nil
	}

	return nil, errors.New("right-hand side must be a literal or a list literal")
}

func validateLiteral(kind ValueKind, op Op, value any) error {
	switch kind {
	case KindString:
		if op == OpIN {
			list, ok := value.([]string)
			if !ok {
				return fmt.Errorf("expected list of %s literals", kind)
			}
			if len(list) == 0 {
				return errors.New("list literal must not be empty")
			}
			return nil
		}
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	case KindNumber:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	case KindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	default:
		return fmt.Errorf("unsupported field kind %s", kind)
	}
	return nil
}

func callSetter(setter SetterFunc, field reflect.Value, value any) error {
	if field.Kind() == reflect.Ptr && field.IsNil() {
		field.Set(reflect.New(field.Type().Elem()))
	}
	return setter(field, value)
}

func assignValue(field reflect.Value, value any) error {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return assignValue(field.Elem(), value)
	}
	if field.Kind() == reflect.Interface {
		field.Set(reflect.ValueOf(value))
		return nil
	}

	switch v := value.(type) {
	case string:
		if field.Kind() != reflect.String {
			return fmt.Errorf("expected string-compatible destination, got %s", field.Kind())
		}
		field.SetString(v)
	case bool:
		if field.Kind() != reflect.Bool {
			return fmt.Errorf("expected bool destination, got %s", field.Kind())
		}
		field.SetBool(v)
	case []string:
		if field.Kind() != reflect.Slice || field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("expected slice of strings destination, got %s", field.Type())
		}
		field.Set(reflect.ValueOf(append([]string(nil), v...)))
	case float64:
		return assignNumeric(field, v)
	default:
		return fmt.Errorf("unsupported literal type %T", value)
	}
	return nil
}

func assignNumeric(field reflect.Value, value float64) error {
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		field.SetFloat(value)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if math.Trunc(value) != value {
			return fmt.Errorf("cannot assign non-integer value %v to integer field", value)
		}
		if field.OverflowInt(int64(value)) {
			return fmt.Errorf("value %v overflows integer field", value)
		}
		field.SetInt(int64(value))
		return nil
	default:
		return fmt.Errorf("numeric assignment requires integer or float field, got %s", field.Kind())
	}
}
