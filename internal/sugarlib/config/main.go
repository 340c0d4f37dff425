/*
Package config
Root configuration of the sugar client, kept in '~/.sugarrc'.

Usage:

    import "github.com/sugar-tools/sugar/internal/sugarlib/config"

    cfg, err := config.Load("")  // Loads '~/.sugarrc'
    if err != nil { ... }

    cfg.SetHost(config.Host{
        Host:  "http://localhost:8080",
        URI:   "v1",
        Token: "XXX",
    })
    err = cfg.Save()

    host := cfg.FindHost("http://localhost:8080")

The file is in INI format with one section per backend:

    [http-localhost-8080]
    host     = http://localhost:8080
    uri      = v1
    username = admin
    token    = XXX
*/
package config
