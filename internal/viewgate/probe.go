package viewgate

import "github.com/mssola/useragent"

// Capability describes what the recipient's rendering environment can be
// trusted to do.
type Capability struct {
	Engine  string
	Browser string
	Mobile  bool
}

// RenderCapabilityProbe resolves a raw User-Agent into a capability
// descriptor. Injected so strategy selection is testable without real
// browser strings.
type RenderCapabilityProbe interface {
	Probe(rawUserAgent string) Capability
}

// excludedBrowsers lists desktop browsers whose native paginated renderer
// misreports page events. Sessions from these always take the opaque path.
var excludedBrowsers = map[string]bool{
	"Safari": true,
}

// NativeRenderReliable reports whether the paginated renderer can be trusted
// for this environment.
func (c Capability) NativeRenderReliable() bool {
	if c.Mobile {
		return true
	}
	return !excludedBrowsers[c.Browser]
}

// UserAgentProbe parses real User-Agent headers.
type UserAgentProbe struct{}

func (UserAgentProbe) Probe(rawUserAgent string) Capability {
	ua := useragent.New(rawUserAgent)
	engine, _ := ua.Engine()
	browser, _ := ua.Browser()
	return Capability{
		Engine:  engine,
		Browser: browser,
		Mobile:  ua.Mobile(),
	}
}
