package sugarlib

import (
	"fmt"

	"github.com/sugar-tools/sugar/internal/sugarlib/config"
	"github.com/sugar-tools/sugar/pkg/webtoken"
)

/*
GetHost
Figure out which backend to talk to and with which token.

1. If the user provided a hostname, look it up in the root configuration
   (either by section name or by 'host' value). If it isn't there, use the
   hostname as is, without a token.

2. If the user didn't provide a hostname and the root configuration has
   exactly one host, use that one. Otherwise give up; there is no way to
   tell which one is meant.

3. The 'uri' and 'token' arguments, when not empty, override what the
   configuration says. A host without a token is fine; reads usually don't
   need one and write errors will be reported by the server.
*/
func GetHost(
	cfg *config.RootConfig, hostname, uri, token string,
) (config.Host, error) {
	var result config.Host
	if hostname != "" {
		found := cfg.FindHost(hostname)
		if found != nil {
			result = *found
		} else {
			result = config.Host{Host: hostname}
		}
	} else {
		count := 0
		if cfg != nil {
			count = len(cfg.Hosts)
		}
		if count != 1 {
			return result, fmt.Errorf(
				"no host given and %d hosts configured, please use --host",
				count,
			)
		}
		result = cfg.Hosts[0]
	}

	if uri != "" {
		result.URI = uri
	}
	if result.URI == "" {
		result.URI = config.DefaultURI
	}
	if token != "" {
		result.Token = token
	}
	return result, nil
}

// tokensFor returns a token provider preloaded with the host's saved token
func tokensFor(host config.Host) *webtoken.WebToken {
	tokens := &webtoken.WebToken{}
	tokens.SetToken(host.Token)
	return tokens
}
