package provider

import "legallyai/jobboard-service/internal/config"

// FromConfig builds every adapter in its fixed query order. Unconfigured
// adapters are included; they report StatusUnavailable without network I/O.
func FromConfig(cfg *config.Config, opts ...Option) []Provider {
	opts = append([]Option{WithRateLimit(cfg.ProviderRatePerSecond)}, opts...)
	return []Provider{
		NewAdzuna(cfg.Adzuna.AppID, cfg.Adzuna.AppKey, cfg.Adzuna.Country, opts...),
		NewJooble(cfg.Jooble.APIKey, opts...),
		NewUSAJobs(cfg.USAJobs.APIKey, cfg.USAJobs.UserAgent, opts...),
		NewCareerjet(cfg.Careerjet.AffiliateID, cfg.Careerjet.Locale, opts...),
	}
}

// Names returns the labels of ps in order.
func Names(ps []Provider) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name()
	}
	return names
}
