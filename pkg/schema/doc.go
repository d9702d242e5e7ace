// Package schema resolves the field list of an entity type and bundle.
//
// Every provider implements validator.Metadata:
//
//   - Static holds schemas in memory, usually loaded from YAML with Load.
//   - SQL reads the field_instances table, created by Migrate.
//   - Redis shares schemas between processes and can fall back to another provider.
//   - Cached keeps resolved schemas in an in-process LRU.
//
// A YAML document can list fields directly or describe an entity the way a
// content store does (label key, field instances with their storage types);
// Derive turns such a description into field specs:
//
//	schemas:
//	  node:
//	    article:
//	      - name: title
//	        required: true
//	        preprocessors: [morphText]
//	        validators: [isText]
//	entities:
//	  - type: node
//	    label_key: title
//	    bundles:
//	      page:
//	        - field_name: field_image
//	          field_type: image
//	          settings: {max_resolution: 200x150}
//
// Unknown entity types and bundles resolve to an empty field list, which the
// engine treats as valid.
package schema
