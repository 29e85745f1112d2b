// Tribunal is a CLI that audits a code repository with a panel of LLM
// reviewer personas and a deterministic adjudication pipeline.
//
// Probes clone the subject repository and collect forensic evidence against a
// rubric. Three reviewer personas (Prosecutor, Defense, TechLead) deliberate
// over the evidence, and a fixed rule pipeline resolves their opinions into
// bounded per-dimension scores and an overall verdict.
//
// Usage:
//
//	tribunal audit https://github.com/acme/widget.git   # run a full audit
//	tribunal audit <url> --doc report.md --format json  # include doc analysis
//	tribunal rubric show                                # print the rubric
//	tribunal rubric validate custom.yaml                # check a rubric file
//	tribunal models doctor                              # verify credentials
//	tribunal config init                                # write default config
//
// See https://github.com/dshills/tribunal for full documentation.
package main
