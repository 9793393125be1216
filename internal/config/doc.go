// Package config provides configuration parsing for routegen projects.
//
// The configuration is stored in routegen.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "storefront",
//	  "routes": "app/pages",
//	  "output": "app/routes/routes_gen.go",
//	  "package": "routes",
//	  "public": "public",
//	  "dev": {
//	    "port": 3400,
//	    "host": "localhost",
//	    "watch": ["shared"]
//	  },
//	  "deploy": {
//	    "bucket": "storefront-routes",
//	    "region": "eu-west-1",
//	    "prefix": "tables/"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Pages dir:", cfg.RoutesPath())
package config
