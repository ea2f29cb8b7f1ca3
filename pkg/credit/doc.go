// Package credit defines the data model shared by the decision engine: loan
// applications, authored rules, decision profiles and the closed set of
// decisions.
//
// # Applications
//
// An Application is decoded from a JSON or YAML object. Identity and label
// fields (application_id, final_decision, decision_source,
// manual_decline_reasons) are typed strictly. Every other key is an
// underwriting attribute held as a Value. Attributes listed in Schema are
// checked against their declared kind; a mismatch is stored as a malformed
// value instead of failing the decode, so that only rules referencing the
// attribute are affected:
//
//	var app credit.Application
//	if err := json.Unmarshal(data, &app); err != nil {
//	    return err
//	}
//	if err := app.Validate(); err != nil {
//	    // structural fault: the application cannot be evaluated
//	}
//
// # Profiles
//
// A DecisionProfile groups ProfileRuleConfig entries. Decoding applies the
// defaults weight_override=1, hard_decline=false and active=true. Validate
// reports every structural problem at once as a *ValidationError.
package credit
