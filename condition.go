package treedi

import "fmt"

type (
	// Condition gates a binding on the value of a named string binding, evaluated at flush.
	Condition struct {
		namedStringComponent string
		operator             operator
		operatorName         string
		value                string
	}

	operator = func(string, string) bool

	ConditionNameBuilder struct {
		namedStringComponent string
	}
)

//goland:noinspection GoVarAndConstTypeMayBeOmitted
var (
	equals operator = func(a, b string) bool {
		return a == b
	}

	notEquals operator = func(a, b string) bool {
		return a != b
	}
)

// When starts a condition on the string bound under the name, e.g. When("APP_ENV").Equals("prod").
func When(namedStringComponent string) ConditionNameBuilder {
	return ConditionNameBuilder{
		namedStringComponent: namedStringComponent,
	}
}

func (cn ConditionNameBuilder) Equals(value string) Condition {
	return Condition{
		namedStringComponent: cn.namedStringComponent,
		operator:             equals,
		operatorName:         "==",
		value:                value,
	}
}

func (cn ConditionNameBuilder) NotEquals(value string) Condition {
	return Condition{
		namedStringComponent: cn.namedStringComponent,
		operator:             notEquals,
		operatorName:         "!=",
		value:                value,
	}
}

func (cond Condition) String() string {
	return fmt.Sprintf("%s %s %q", cond.namedStringComponent, cond.operatorName, cond.value)
}

// holds resolves the named string from the container, found is false when no string is bound under
// that name.
func (cond Condition) holds(c *Container) (holds bool, found bool, err error) {
	val, found, err := c.resolve(c.newContext(), newRequest(StringType, Named(cond.namedStringComponent), Optional()))
	if err != nil {
		return false, false, fmt.Errorf("failed to evaluate condition %s:\n\t%w", cond, err)
	}
	if !found {
		return false, false, nil
	}
	return cond.operator(val.String(), cond.value), true, nil
}
