package credit

import "sort"

// AttributeSpec declares one known underwriting attribute.
type AttributeSpec struct {
	Name     string
	Kind     Kind
	Nullable bool // null is a legal value
	Core     bool // must be present and well-typed for the application to be accepted
}

// Schema lists the underwriting attributes the engine knows about. Attribute
// values that disagree with their declared kind are stored as malformed.
var Schema = []AttributeSpec{
	// Context
	{Name: "channel", Kind: KindString},
	{Name: "product_type", Kind: KindString},
	{Name: "loan_purpose", Kind: KindString},
	{Name: "state", Kind: KindString},

	// Terms
	{Name: "loan_amount", Kind: KindNumber},
	{Name: "loan_term_months", Kind: KindNumber},
	{Name: "secured_flag", Kind: KindBool},
	{Name: "collateral_type", Kind: KindString, Nullable: true},
	{Name: "collateral_value", Kind: KindNumber, Nullable: true},
	{Name: "ltv_ratio", Kind: KindNumber, Nullable: true},
	{Name: "prior_relationship_flag", Kind: KindBool},

	// Credit profile
	{Name: "credit_score", Kind: KindNumber, Core: true},
	{Name: "credit_history_length_years", Kind: KindNumber},
	{Name: "num_open_tradelines", Kind: KindNumber},
	{Name: "num_revolving_accounts", Kind: KindNumber},
	{Name: "revolving_utilization_pct", Kind: KindNumber},
	{Name: "num_30d_late_last_12m", Kind: KindNumber},
	{Name: "num_60d_late_last_24m", Kind: KindNumber},
	{Name: "num_90d_late_last_24m", Kind: KindNumber},
	{Name: "bankruptcy_last_7y_flag", Kind: KindBool},
	{Name: "foreclosure_last_7y_flag", Kind: KindBool},
	{Name: "collections_count", Kind: KindNumber},
	{Name: "chargeoff_count", Kind: KindNumber},
	{Name: "public_judgment_count", Kind: KindNumber},
	{Name: "inquiries_last_6m", Kind: KindNumber},

	// Capacity
	{Name: "monthly_gross_income", Kind: KindNumber},
	{Name: "monthly_debt_payments", Kind: KindNumber},
	{Name: "dti_ratio", Kind: KindNumber, Core: true},
	{Name: "employment_status", Kind: KindString},
	{Name: "months_in_job", Kind: KindNumber},
	{Name: "months_in_industry", Kind: KindNumber, Nullable: true},

	// Outcome tracking
	{Name: "performance_12m", Kind: KindString, Nullable: true},
}

var schemaIndex = func() map[string]AttributeSpec {
	idx := make(map[string]AttributeSpec, len(Schema))
	for _, spec := range Schema {
		idx[spec.Name] = spec
	}
	return idx
}()

// LookupAttribute returns the spec of a known attribute.
func LookupAttribute(name string) (AttributeSpec, bool) {
	spec, ok := schemaIndex[name]
	return spec, ok
}

// AttributeNames returns the names of all known attributes in sorted order.
func AttributeNames() []string {
	names := make([]string, 0, len(Schema))
	for _, spec := range Schema {
		names = append(names, spec.Name)
	}
	sort.Strings(names)
	return names
}

// checkKind coerces a raw value against the declared spec. Null is kept as
// null even for non-nullable attributes so presence checks stay expressible.
func (s AttributeSpec) checkKind(v Value) Value {
	switch {
	case v.Kind() == KindMalformed, v.IsNull():
		return v
	case v.Kind() != s.Kind:
		return MalformedValue(s.Name + " must be a " + s.Kind.String() + ", got " + v.Kind().String())
	default:
		return v
	}
}
