// Package oembed matches URLs against a registry of oEmbed providers and
// parses the embed metadata those providers return.
//
// The package performs no I/O of its own. Anything that touches the network
// goes through an HTTP implementation supplied by the caller, which is also
// where timeouts and cancellation belong.
//
//	schema, err := oembed.LoadIncluded()
//	if err != nil {
//		return err
//	}
//	resp, ok, err := schema.Fetch(client, "http://www.flickr.com/photos/bees/2341623661/")
//	switch {
//	case !ok:
//		// no provider knows this URL
//	case err != nil:
//		// provider matched but the request or the response failed
//	default:
//		fmt.Println(*resp.Meta().Title)
//	}
//
// Discovery and XML responses are not supported.
package oembed

// Encoder percent-encodes a string so it can be embedded in a URL.
type Encoder interface {
	URLEncode(s string) (string, error)
}

// HTTP is the transport capability required by Fetch and the remote schema
// loaders. Get blocks until the body of url is available or fails.
type HTTP interface {
	Encoder
	Get(url string) (string, error)
}

// LatestProvidersURL is the public provider list maintained at oembed.com.
const LatestProvidersURL = "https://oembed.com/providers.json"
