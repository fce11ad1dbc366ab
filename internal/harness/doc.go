// Package harness runs YAML conformance scenarios against the translator.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: people_queries
//	description: "Filters and paging over the People set"
//	cases:
//	  - name: equality
//	    filter: "Name eq 'Ann'"
//	    expect:
//	      Name: { $eq: Ann }
//	  - name: full_query
//	    query: "People?$top=5"
//	    expect:
//	      collection: People
//	      query: {}
//	      limit: 5
//	  - name: unsupported
//	    filter: "length(Name) eq 3"
//	    expect_error: unsupported_method
//
// A case sets exactly one of query or filter, and exactly one of expect or
// expect_error. Query expectations use the field names of the JSON result
// (collection, query, sort, projection, skip, limit, inlinecount,
// navigationProperty, includes). Non-JSON values are written in Extended
// JSON form, e.g. { $regularExpression: { pattern: "^A", options: i } }.
//
// Unknown fields are rejected so typos surface as load errors.
//
// # Comparison
//
// Actual and expected documents are compared by their RFC 8785 canonical
// bytes, so key order is irrelevant. Sort order is not checked by scenario
// expectations; the translator's own tests cover it.
//
// # Concurrency
//
// Cases are independent and translate in parallel (errgroup, bounded by
// Options.Concurrency). The report keeps the case order of the file.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/people.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario, harness.Options{})
//	if !result.Pass {
//	    for _, c := range result.Failures() {
//	        log.Println(c.Name, c.Message)
//	    }
//	}
package harness
