// Package config loads routectl configuration and route tables.
//
// Configuration lives in routectl.yaml (or .yml, .json, .toml) in the
// working directory or any parent; ROUTECTL_CONFIG names a file
// explicitly. JSON files may contain comments and trailing commas.
//
// # Configuration File Structure
//
//	routes: routes.yaml        # or s3://bucket/routes.yaml
//	base: /app
//	mode: history              # abstract, history or hash
//	serve:
//	  host: localhost
//	  port: 7070
//	  metrics: true
//	  metricsPath: /metrics
//	  websocketPath: /ws
//	watch:
//	  enabled: true
//	  debounce: 100ms
//	s3:
//	  region: eu-west-1
//	log:
//	  level: info
//	  format: text
//
// # Route Tables
//
// Route tables use the same formats and are described by RouteFile.
// LoadRoutes reads them from local files or, with WithS3Client, from S3.
//
//	routes, err := config.LoadRoutes(ctx, cfg.RoutesSource(),
//	    config.WithS3Client(config.NewS3Client(cfg.S3)))
package config
