// Package config loads xbow.json.
//
// The file is optional: without one, defaults apply. XBOW_ADDR,
// XBOW_LOG_LEVEL and XBOW_LOG_FORMAT override the file.
//
// # Configuration File Structure
//
//	{
//	  "addr": ":8080",
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "store": {
//	    "name": "$",
//	    "seed": ["buy milk", "walk the dog"]
//	  },
//	  "dispatch": {
//	    "queueSize": 64
//	  },
//	  "watch": {
//	    "streamBuffer": 64,
//	    "pingInterval": "30s",
//	    "writeTimeout": "10s"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "xbow"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Resolve("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Addr)
package config
