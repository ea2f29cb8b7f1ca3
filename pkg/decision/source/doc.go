// Package source loads decision profiles and loan applications for the
// decision engine.
//
// # File Formats
//
// Profiles are read from YAML or JSON. A file may hold a single profile, a
// list of profiles, or (YAML only) several documents:
//
//	id: conservative
//	name: Conservative
//	approval_threshold: 60
//	rules:
//	  - rule:
//	      rule_instance_id: prime
//	      expression: credit_score >= 760 and dti_ratio <= 0.35
//	    weight_override: 50
//	  - rule:
//	      rule_instance_id: late_90
//	      expression: num_90d_late_last_24m >= 1
//	      aligned_decline_reason_codes: [DELINQ_90]
//	    hard_decline: true
//
// Applications are read from a JSON array or object, JSON lines (.jsonl,
// .ndjson), or a YAML list or mapping. Attributes sit at the top level of
// each application object next to application_id.
//
// Every entity is decoded on its own. An entity that fails to decode is
// reported as an engine.Rejection carrying its file and position, and the
// remaining entities load normally.
//
// # Watching
//
// Watcher reports changes to a profile file or directory, debounced, so
// that a long-running decide command can reload its profiles.
package source
