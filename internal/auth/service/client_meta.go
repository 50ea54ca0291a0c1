package service

import (
	"strings"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain"
	"github.com/mssola/useragent"
)

const (
	deviceDesktop = "desktop"
	deviceMobile  = "mobile"
	deviceBot     = "bot"
	unknown       = "unknown"
)

// ParseClientMeta fills device, browser and OS from the raw User-Agent header.
func ParseClientMeta(ip, userAgent string) domain.ClientMeta {
	meta := domain.ClientMeta{
		IPAddress: ip,
		UserAgent: userAgent,
		Device:    unknown,
		Browser:   unknown,
		OS:        unknown,
	}
	if strings.TrimSpace(userAgent) == "" {
		return meta
	}

	ua := useragent.New(userAgent)
	switch {
	case ua.Bot():
		meta.Device = deviceBot
	case ua.Mobile():
		meta.Device = deviceMobile
	default:
		meta.Device = deviceDesktop
	}
	if name, version := ua.Browser(); name != "" {
		meta.Browser = strings.TrimSpace(name + " " + version)
	}
	if os := ua.OS(); os != "" {
		meta.OS = os
	}
	return meta
}
