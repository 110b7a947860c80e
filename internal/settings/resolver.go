// internal/settings/resolver.go
//
// Environment overlay for the Taiga backend settings.
//
/*
Context
--------
`Resolver.Resolve` takes the defaults and one environment snapshot and
returns a fresh *Settings.  The steps run in a fixed order because later
steps read earlier results (the Asana callback URL reads the front site):

  1. Database        – DATABASES.default from TAIGA_DB_*.
  2. Sites           – TAIGA_HOSTNAME plus scheme, then MEDIA_URL/STATIC_URL.
  3. Secret key      – TAIGA_SECRET_KEY, verbatim.
  4. Async backend   – celery defaults, broker/result URLs, events backend.
  5. Email           – SMTP transport when TAIGA_ENABLE_EMAIL is true.
  6. Importers       – GitHub, Trello, Jira, Asana, each behind its flag.
  7. SAML            – extra installed app and JSON config.

Failure model
-------------
The resolver validates nothing.  Absent variables become "".  Only three
conversions can fail (email port, certificate reads, SAML JSON), and each
aborts the whole resolution: a misconfigured deployment must not start.

Instrumentation
---------------
  • DEBUG span per activated block.
  • INFO span "settings resolved" with hostname, scheme, and feature flags.
  • Secrets are never logged.
*/
package settings

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// PostgresEngine is the only database engine the deployment supports.
const PostgresEngine = "django.db.backends.postgresql"

const (
	rabbitEventsBackend = "taiga.events.backends.rabbitmq.EventsPushBackend"
	smtpEmailBackend    = "django.core.mail.backends.smtp.EmailBackend"
	samlInstalledApp    = "taiga_contrib_saml_auth"

	// Container ports.  RABBIT_PORT and REDIS_PORT hold docker-link URLs
	// such as tcp://172.17.0.2:5672 and only gate the block.
	rabbitPort = "5672"
	redisPort  = "6379"

	defaultRabbitHost = "rabbit"
	defaultRedisHost  = "redis"

	notificationsMinInterval = 300 // seconds
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

/*──────────────────────────── resolver ─────────────────────────────────────*/

// Resolver overlays an environment snapshot on Defaults.  ReadFile and Log
// are optional; they default to os.ReadFile and the global zap logger.
type Resolver struct {
	Defaults Defaults
	ReadFile func(path string) ([]byte, error)
	Log      *zap.SugaredLogger
}

// Resolve returns the settings for env.  It is deterministic: equal inputs
// give equal outputs, and neither the defaults nor env are modified.
func (r *Resolver) Resolve(env Env) (*Settings, error) {
	log := r.Log
	if log == nil {
		log = zap.S()
	}

	s := r.Defaults.Common.clone()

	resolveDatabase(&s, env)
	resolveSites(&s, env)
	s.SecretKey = env.Get("TAIGA_SECRET_KEY")

	if asyncEnabled(env) {
		resolveAsync(&s, r.Defaults.Celery, env)
		log.Debugw("async backend enabled", "broker", redactURL(s.Celery.BrokerURL))
	}

	if env.Flag("TAIGA_ENABLE_EMAIL") {
		if err := resolveEmail(&s, env); err != nil {
			log.Errorw("email settings failed", "err", err)
			return nil, err
		}
		log.Debugw("email enabled", "host", s.Email.Host, "port", s.Email.Port, "tls", s.Email.UseTLS)
	}

	if err := r.resolveImporters(&s, env); err != nil {
		log.Errorw("importer settings failed", "err", err)
		return nil, err
	}

	if env.Flag("SAML_AUTH_ENABLE") {
		if err := resolveSAML(&s, env); err != nil {
			log.Errorw("saml settings failed", "err", err)
			return nil, err
		}
		log.Debugw("saml enabled")
	} else {
		s.SAMLAuth = nil
	}

	log.Infow("settings resolved",
		"hostname", s.Sites.API.Domain,
		"scheme", s.Sites.API.Scheme,
		"features", s.Features(),
	)
	return &s, nil
}

/*──────────────────────────── steps ────────────────────────────────────────*/

func resolveDatabase(s *Settings, env Env) {
	s.Databases.Default = Database{
		Engine:   PostgresEngine,
		Name:     env.Get("TAIGA_DB_NAME"),
		Host:     env.Get("TAIGA_DB_HOST"),
		User:     env.Get("TAIGA_DB_USER"),
		Password: env.Get("TAIGA_DB_PASSWORD"),
	}
}

func resolveSites(s *Settings, env Env) {
	host := env.Get("TAIGA_HOSTNAME")
	scheme := Scheme(env)

	s.Sites.API.Domain = host
	s.Sites.API.Scheme = scheme
	s.Sites.Front.Domain = host
	s.Sites.Front.Scheme = scheme

	s.MediaURL = scheme + "://" + host + "/media/"
	s.StaticURL = scheme + "://" + host + "/static/"
}

// Scheme picks the public URL scheme.  An explicit TAIGA_SCHEME wins and is
// taken verbatim.  Otherwise https is used when TLS is terminated either by
// the container (TAIGA_SSL) or by a reverse proxy in front of it.
func Scheme(env Env) string {
	if v := env.Get("TAIGA_SCHEME"); v != "" {
		return v
	}
	if env.Flag("TAIGA_SSL") || env.Flag("TAIGA_SSL_BY_REVERSE_PROXY") {
		return "https"
	}
	return "http"
}

func asyncEnabled(env Env) bool {
	if env.Flag("TAIGA_EVENTS_ENABLE") {
		return true
	}
	return env.Present("RABBIT_PORT") && env.Present("REDIS_PORT")
}

func resolveAsync(s *Settings, defaults Celery, env Env) {
	rabbit := env.GetOr("RABBIT_HOST", defaultRabbitHost)
	redis := env.GetOr("REDIS_HOST", defaultRedisHost)

	c := defaults.clone()
	c.BrokerURL = "amqp://guest:guest@" + rabbit + ":" + rabbitPort
	c.ResultBackend = "redis://" + redis + ":" + redisPort + "/0"
	c.Enabled = true
	s.Celery = c

	s.Events = EventsPush{
		Backend: rabbitEventsBackend,
		Options: map[string]string{"url": c.BrokerURL + "//"},
	}
}

func resolveEmail(s *Settings, env Env) error {
	raw := env.Get("TAIGA_EMAIL_PORT")
	port, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("TAIGA_EMAIL_PORT: %w", err)
	}

	s.Email = Email{
		Enabled:                        true,
		DefaultFrom:                    env.Get("TAIGA_EMAIL_FROM"),
		Backend:                        smtpEmailBackend,
		UseTLS:                         env.Flag("TAIGA_EMAIL_USE_TLS"),
		Host:                           env.Get("TAIGA_EMAIL_HOST"),
		Port:                           port,
		HostUser:                       env.Get("TAIGA_EMAIL_USER"),
		HostPassword:                   env.Get("TAIGA_EMAIL_PASS"),
		ChangeNotificationsMinInterval: notificationsMinInterval,
	}
	return nil
}

func (r *Resolver) resolveImporters(s *Settings, env Env) error {
	if env.Flag("TAIGA_ENABLE_GITHUB_IMPORTER") {
		s.Importers.GitHub = GitHubImporter{
			Active:       true,
			ClientID:     env.Get("TAIGA_GITHUB_CLIENT_ID"),
			ClientSecret: env.Get("TAIGA_GITHUB_CLIENT_SECRET"),
		}
	}

	if env.Flag("TAIGA_ENABLE_TRELLO_IMPORTER") {
		s.Importers.Trello = TrelloImporter{
			Active:    true,
			APIKey:    env.Get("TAIGA_TRELLO_API_KEY"),
			SecretKey: env.Get("TAIGA_TRELLO_SECRET_KEY"),
		}
	}

	if env.Flag("TAIGA_ENABLE_JIRA_IMPORTER") {
		cert, err := r.loadFile(env, "TAIGA_JIRA_CERT_FILE")
		if err != nil {
			return err
		}
		pub, err := r.loadFile(env, "TAIGA_JIRA_PUB_CERT")
		if err != nil {
			return err
		}
		s.Importers.Jira = JiraImporter{
			Active:      true,
			ConsumerKey: env.Get("TAIGA_JIRA_CONSUMER_KEY"),
			Cert:        cert,
			PubCert:     pub,
		}
	}

	// Asana keeps whatever the defaults carry and only overrides its own
	// fields.  The callback reads the front site resolved above.
	if env.Flag("TAIGA_ENABLE_ASANA_IMPORTER") {
		a := s.Importers.Asana
		a.Active = true
		a.AppID = env.Get("TAIGA_ASANA_APP_ID")
		a.AppSecret = env.Get("TAIGA_ASANA_APP_SECRET")
		a.CallbackURL = AsanaCallbackURL(s.Sites.Front)
		s.Importers.Asana = a
	}
	return nil
}

// AsanaCallbackURL is the OAuth redirect target registered with Asana.
func AsanaCallbackURL(front Site) string {
	return fmt.Sprintf("%s://%s/project/new/import/asana", front.Scheme, front.Domain)
}

// loadFile reads the whole file named by the variable key.
func (r *Resolver) loadFile(env Env, key string) (string, error) {
	read := r.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	path := env.Get(key)
	b, err := read(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return string(b), nil
}

func resolveSAML(s *Settings, env Env) error {
	if !slices.Contains(s.InstalledApps, samlInstalledApp) {
		s.InstalledApps = append(s.InstalledApps, samlInstalledApp)
	}

	raw := env.GetOr("SAML_AUTH_JSON_CONFIG", "null")
	var cfg map[string]any
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return fmt.Errorf("SAML_AUTH_JSON_CONFIG: %w", err)
	}
	s.SAMLAuth = cfg
	return nil
}
