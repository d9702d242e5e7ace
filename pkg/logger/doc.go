// Package logger builds *slog.Logger values for the validation engine and its hosts.
//
// New creates a logger from functional options. WithEnvironment and
// FromConfig pick text at debug level for development and JSON at info
// level for staging and production.
//
// Every logger from New wraps its handler in a ContextHandler. A context
// prepared with WithRun makes each record logged through it carry run_id,
// entity_type and bundle, including records written by schema providers and
// emitters the engine calls:
//
//	ctx = logger.WithRun(ctx, logger.Run{ID: id, EntityType: "node", Bundle: "article"})
//	log.InfoContext(ctx, "validation finished", logger.Outcome("valid"))
//
// The attribute helpers in attr.go keep key names consistent across packages.
// Error and Errors return an empty attribute for nil errors.
package logger
