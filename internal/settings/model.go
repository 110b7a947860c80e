// internal/settings/model.go
//
// Typed settings tree for a Taiga backend.
//
// Context
// -------
// These structs replace the module-level settings dictionary of the Django
// backend.  The shape follows the Django names closely so operators can map
// one onto the other:
//
//   • DATABASES.default          → Databases.Default
//   • SITES.api / SITES.front    → Sites.API / Sites.Front
//   • IMPORTERS.<name>           → Importers.<Name>
//   • CELERY_* and BROKER_URL    → Celery
//   • EVENTS_PUSH_BACKEND*       → Events
//
// Notes
// -----
//   • Struct tags use `koanf:"…"` only.  Defaults are unmarshalled with
//     koanf, and rendering goes back through koanf's structs provider.
//   • `validate` tags are only enforced by Validate; Resolve never checks.
//   • Absent environment variables land here as the empty string.
//   • Oxford commas, two spaces after periods.

package settings

//
// Database section
//

// Database mirrors DATABASES.default.
type Database struct {
	Engine   string `koanf:"engine"   validate:"required"`
	Name     string `koanf:"name"     validate:"required"`
	Host     string `koanf:"host"     validate:"required"`
	User     string `koanf:"user"     validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

// Databases holds the named connections.  Taiga only uses "default".
type Databases struct {
	Default Database `koanf:"default"`
}

//
// Sites section
//

// Site is one public endpoint, either the API or the front client.
type Site struct {
	Scheme string `koanf:"scheme" validate:"oneof=http https"`
	Domain string `koanf:"domain" validate:"required"`
	Name   string `koanf:"name"`
}

// URL returns scheme://domain.
func (s Site) URL() string { return s.Scheme + "://" + s.Domain }

type Sites struct {
	API   Site `koanf:"api"`
	Front Site `koanf:"front"`
}

//
// Async section
//

// Celery is the task-queue block.  Everything except Enabled, BrokerURL,
// and ResultBackend comes from the celery defaults collaborator.
type Celery struct {
	Enabled                 bool     `koanf:"enabled"`
	BrokerURL               string   `koanf:"broker_url"     validate:"required_if=Enabled true"`
	ResultBackend           string   `koanf:"result_backend" validate:"required_if=Enabled true"`
	AcceptContent           []string `koanf:"accept_content"`
	TaskSerializer          string   `koanf:"task_serializer"`
	ResultSerializer        string   `koanf:"result_serializer"`
	Timezone                string   `koanf:"timezone"`
	TaskDefaultQueue        string   `koanf:"task_default_queue"`
	TaskDefaultExchange     string   `koanf:"task_default_exchange"`
	TaskDefaultExchangeType string   `koanf:"task_default_exchange_type"`
	TaskDefaultRoutingKey   string   `koanf:"task_default_routing_key"`
}

// EventsPush selects the real-time notification channel.
type EventsPush struct {
	Backend string            `koanf:"backend" validate:"required"`
	Options map[string]string `koanf:"options"`
}

//
// Email section
//

// Email groups DEFAULT_FROM_EMAIL, EMAIL_*, and the notification interval.
type Email struct {
	Enabled                        bool   `koanf:"enabled"`
	DefaultFrom                    string `koanf:"default_from"`
	Backend                        string `koanf:"backend"`
	UseTLS                         bool   `koanf:"use_tls"`
	Host                           string `koanf:"host"      validate:"required_if=Enabled true"`
	Port                           int    `koanf:"port"      validate:"required_if=Enabled true"`
	HostUser                       string `koanf:"host_user"`
	HostPassword                   string `koanf:"host_password"`
	ChangeNotificationsMinInterval int    `koanf:"change_notifications_min_interval"` // seconds
}

//
// Importers section
//

type GitHubImporter struct {
	Active       bool   `koanf:"active"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
}

type TrelloImporter struct {
	Active    bool   `koanf:"active"`
	APIKey    string `koanf:"api_key"`
	SecretKey string `koanf:"secret_key"`
}

// JiraImporter carries the OAuth1 consumer key plus the PEM text of both
// certificates, read from disk at resolve time.
type JiraImporter struct {
	Active      bool   `koanf:"active"`
	ConsumerKey string `koanf:"consumer_key"`
	Cert        string `koanf:"cert"`
	PubCert     string `koanf:"pub_cert"`
}

type AsanaImporter struct {
	Active      bool   `koanf:"active"`
	AppID       string `koanf:"app_id"`
	AppSecret   string `koanf:"app_secret"`
	CallbackURL string `koanf:"callback_url"`
}

type Importers struct {
	GitHub GitHubImporter `koanf:"github"`
	Trello TrelloImporter `koanf:"trello"`
	Jira   JiraImporter   `koanf:"jira"`
	Asana  AsanaImporter  `koanf:"asana"`
}

//
// Root aggregate
//

// Settings is the resolved configuration.  Treat it as read-only once
// Resolve has returned it.
type Settings struct {
	Databases     Databases      `koanf:"databases"`
	Sites         Sites          `koanf:"sites"`
	MediaURL      string         `koanf:"media_url"`
	StaticURL     string         `koanf:"static_url"`
	SecretKey     string         `koanf:"secret_key"`
	Celery        Celery         `koanf:"celery"`
	Events        EventsPush     `koanf:"events"`
	Email         Email          `koanf:"email"`
	Importers     Importers      `koanf:"importers"`
	InstalledApps []string       `koanf:"installed_apps"`
	SAMLAuth      map[string]any `koanf:"saml_auth"`
}

// Features reports which optional blocks are switched on.  Keys are stable
// and used as metric labels.
func (s *Settings) Features() map[string]bool {
	return map[string]bool{
		"celery":          s.Celery.Enabled,
		"email":           s.Email.Enabled,
		"importer_github": s.Importers.GitHub.Active,
		"importer_trello": s.Importers.Trello.Active,
		"importer_jira":   s.Importers.Jira.Active,
		"importer_asana":  s.Importers.Asana.Active,
		"saml":            s.SAMLAuth != nil,
	}
}

// clone returns a deep copy so resolution never aliases the defaults.
func (s Settings) clone() Settings {
	out := s
	out.InstalledApps = cloneStrings(s.InstalledApps)
	out.Celery = s.Celery.clone()
	if s.Events.Options != nil {
		out.Events.Options = make(map[string]string, len(s.Events.Options))
		for k, v := range s.Events.Options {
			out.Events.Options[k] = v
		}
	}
	out.SAMLAuth = cloneMap(s.SAMLAuth)
	return out
}

func (c Celery) clone() Celery {
	c.AcceptContent = cloneStrings(c.AcceptContent)
	return c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			out[k] = cloneMap(t)
		case []any:
			cp := make([]any, len(t))
			copy(cp, t)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}
