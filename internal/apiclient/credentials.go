package apiclient

import (
	"context"
	"net/http"
)

// Cookie is an upstream session cookie as sent back on later requests.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Credentials identify the operator to the catalog API.
type Credentials struct {
	Cookies []Cookie `json:"cookies,omitempty"`
	Token   string   `json:"token,omitempty"`
}

func (c Credentials) Empty() bool {
	return len(c.Cookies) == 0 && c.Token == ""
}

func (c Credentials) apply(req *http.Request) {
	for _, ck := range c.Cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

// merge folds Set-Cookie values into c. An expired cookie removes the entry.
func (c Credentials) merge(set []*http.Cookie) Credentials {
	if len(set) == 0 {
		return c
	}
	out := Credentials{Token: c.Token}
	byName := map[string]int{}
	for _, ck := range c.Cookies {
		byName[ck.Name] = len(out.Cookies)
		out.Cookies = append(out.Cookies, ck)
	}
	for _, ck := range set {
		expired := ck.MaxAge < 0 || ck.Value == ""
		if i, ok := byName[ck.Name]; ok {
			if expired {
				out.Cookies[i].Value = ""
				continue
			}
			out.Cookies[i].Value = ck.Value
			continue
		}
		if expired {
			continue
		}
		byName[ck.Name] = len(out.Cookies)
		out.Cookies = append(out.Cookies, Cookie{Name: ck.Name, Value: ck.Value})
	}
	kept := out.Cookies[:0]
	for _, ck := range out.Cookies {
		if ck.Value != "" {
			kept = append(kept, ck)
		}
	}
	out.Cookies = kept
	return out
}

type credentialsKey struct{}

// WithCredentials attaches creds to every request issued with ctx.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

func CredentialsFrom(ctx context.Context) Credentials {
	creds, _ := ctx.Value(credentialsKey{}).(Credentials)
	return creds
}
