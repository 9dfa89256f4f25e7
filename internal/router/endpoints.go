package router

import (
	"net/url"
	"slices"
)

// Kind is the body kind of an endpoint's response.
type Kind int

const (
	KindJSON Kind = iota
	KindHTML
)

// ContentType returns the Content-Type header value for the kind.
func (k Kind) ContentType() string {
	if k == KindHTML {
		return "text/html"
	}
	return "application/json"
}

func (k Kind) String() string {
	if k == KindHTML {
		return "html"
	}
	return "json"
}

// Host selects which upstream base URL an endpoint resolves against.
type Host int

const (
	HostStore   Host = iota // storefront, steam.store_url
	HostAPI                 // Web API, steam.api_url
	HostLiteral             // the required parameter is the full URL
)

// Endpoint is one entry of the dispatch table.
type Endpoint struct {
	Name string
	Host Host
	Path string
	// Query holds static query parameters sent on every call.
	Query url.Values
	// Param names the inbound parameter the endpoint requires, if any.
	Param string
	// ParamQuery is the upstream query name Param is forwarded under.
	// Empty for HostLiteral endpoints.
	ParamQuery string
	// RequiresKey endpoints answer 500 when no secret is configured.
	RequiresKey bool
	// Keyed endpoints carry the secret as the key query parameter. Keyed
	// implies RequiresKey.
	Keyed     bool
	Kind      Kind
	Transform Transform
}

// Endpoints is the dispatch table. Several entries share the featuredcategories
// upstream and differ only in their transform. appdetails is gated on the key
// but the storefront call does not carry it.
var Endpoints = []Endpoint{
	{
		Name:        "featured",
		Host:        HostAPI,
		Path:        "/ISteamApps/GetFeaturedCategories/v1/",
		RequiresKey: true,
		Keyed:       true,
		Kind:        KindJSON,
	},
	{
		Name:        "featuredgames",
		Host:        HostAPI,
		Path:        "/ISteamApps/GetFeaturedGames/v1/",
		RequiresKey: true,
		Keyed:       true,
		Kind:        KindJSON,
	},
	{
		Name:        "appdetails",
		Host:        HostStore,
		Path:        "/api/appdetails",
		Param:       "appid",
		ParamQuery:  "appids",
		RequiresKey: true,
		Kind:        KindJSON,
	},
	{
		Name:        "newreleases",
		Host:        HostStore,
		Path:        "/api/featuredcategories/",
		RequiresKey: true,
		Keyed:       true,
		Kind:        KindJSON,
		Transform:   ExtractItems("new_releases.items", "top_sellers.items"),
	},
	{
		Name:        "deals",
		Host:        HostStore,
		Path:        "/api/featuredcategories/",
		RequiresKey: true,
		Keyed:       true,
		Kind:        KindJSON,
		Transform:   ExtractItems("specials.items"),
	},
	{
		Name:        "upcoming",
		Host:        HostStore,
		Path:        "/search/results/",
		Query:       url.Values{"filter": {"comingsoon"}, "json": {"1"}},
		RequiresKey: true,
		Keyed:       true,
		Kind:        KindJSON,
	},
	{
		Name: "popularupcoming",
		Host: HostStore,
		Path: "/api/featuredcategories/",
		Kind: KindJSON,
	},
	{
		Name:  "customurl",
		Host:  HostLiteral,
		Param: "url",
		Kind:  KindHTML,
	},
	{
		Name:  "wishlistpopular",
		Host:  HostStore,
		Path:  "/search/",
		Query: url.Values{"filter": {"popularwishlist"}},
		Kind:  KindHTML,
	},
}

// Lookup returns the endpoint definition for name.
func Lookup(name string) (Endpoint, bool) {
	i := slices.IndexFunc(Endpoints, func(e Endpoint) bool { return e.Name == name })
	if i < 0 {
		return Endpoint{}, false
	}
	return Endpoints[i], true
}

// Names returns the endpoint names in table order.
func Names() []string {
	names := make([]string, 0, len(Endpoints))
	for _, e := range Endpoints {
		names = append(names, e.Name)
	}
	return names
}
