package balotilo

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/dan-ringwald/balotilo/lib/restyutil"
	"github.com/dan-ringwald/balotilo/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/balotilo")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Client owns the authenticated session against one balotilo instance:
// cookie jar, credentials, base url. One client serves one batch run; the
// session is never persisted.
type Client struct {
	BaseUrl *url.URL
	// Http follows same-domain redirects, NoRedirect returns 3xx responses
	// untouched so the orchestrator can interpret Location itself. Both
	// share one cookie jar.
	Http       *resty.Client
	NoRedirect *resty.Client

	creds Credentials
}

type Credentials struct {
	Email    string
	Password string
}

type ClientOptions struct {
	BaseUrl     string
	Credentials Credentials
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "scrapers/balotilo/http")

	noRedirect := resty.New()
	noRedirect.SetBaseURL(opts.BaseUrl)
	noRedirect.SetCookieJar(jar)
	noRedirect.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(noRedirect.GetClient().Transport)
	noRedirect.SetHeader("user-agent", userAgent)
	noRedirect.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	noRedirect.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(noRedirect, "scrapers/balotilo/http")

	c := &Client{
		BaseUrl:    baseUrl,
		Http:       client,
		NoRedirect: noRedirect,
		creds:      opts.Credentials,
	}
	return c, nil
}

// SetRestyInstrumentOutput dumps every raw exchange of this client to the
// given output, for debugging against the live site.
func (c *Client) SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.Http, output)
	restyutil.InstrumentClient(c.NoRedirect, output)
}
