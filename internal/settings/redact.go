package settings

import (
	"net/url"
	"strings"
)

const mask = "********"

// Redacted returns a deep copy with credentials and private key material
// replaced by a fixed mask.  Empty values stay empty so operators can still
// see what is missing.
func (s *Settings) Redacted() *Settings {
	out := s.clone()

	hide(&out.SecretKey)
	hide(&out.Databases.Default.Password)
	hide(&out.Email.HostPassword)
	hide(&out.Importers.GitHub.ClientSecret)
	hide(&out.Importers.Trello.SecretKey)
	hide(&out.Importers.Jira.Cert)
	hide(&out.Importers.Asana.AppSecret)

	out.Celery.BrokerURL = redactURL(out.Celery.BrokerURL)
	out.Celery.ResultBackend = redactURL(out.Celery.ResultBackend)
	for k, v := range out.Events.Options {
		out.Events.Options[k] = redactURL(v)
	}
	redactTree(out.SAMLAuth)
	return &out
}

func hide(v *string) {
	if *v != "" {
		*v = mask
	}
}

// redactURL masks the password part of a connection URL.  Values that do
// not parse are returned unchanged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	return u.Redacted()
}

// redactTree masks values in a decoded JSON tree whose key looks sensitive.
func redactTree(m map[string]any) {
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			redactTree(t)
		case string:
			if sensitiveKey(k) && t != "" {
				m[k] = mask
			}
		}
	}
}

func sensitiveKey(k string) bool {
	k = strings.ToLower(k)
	for _, frag := range []string{"secret", "password", "private"} {
		if strings.Contains(k, frag) {
			return true
		}
	}
	return false
}
