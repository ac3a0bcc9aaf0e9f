// Package publish decides whether a release artifact may ship and ships it.
//
// # Gate
//
// Gate.Decide turns a reconciliation outcome into a Decision. Only a converged,
// uncancelled pass may publish; every other outcome yields MayPublish=false and a
// failure report listing each failed or skipped action with its reason.
//
// # Artifacts
//
// Bundle zips the translation output directory. Coordinates (group, artifact,
// version) come from configuration or from a gradle.properties file. Publishers
// upload the bundle to Artifactory (PUT with basic auth, snapshot or release
// repository chosen from the version) or archive it in an S3 bucket.
//
// # Usage
//
//	decision := publish.NewGate().Decide(outcome)
//	if !decision.MayPublish {
//	    decision.WriteReport(os.Stderr)
//	    return
//	}
//	data, _ := publish.Bundle(fs, cfg.Resources.OutputRoot)
//	err := publisher.Publish(ctx, publish.Artifact{Coordinates: coords, Classifier: "bundle", Content: data})
package publish
