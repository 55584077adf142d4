package releases

import (
	"net/url"
	"strings"

	"github.com/temirov/podrelease/internal/gitrepo"
)

const (
	newReleasePathConstant      = "/releases/new"
	tagQueryParameterConstant   = "tag"
	titleQueryParameterConstant = "title"
	bodyQueryParameterConstant  = "body"
	querySeparatorConstant      = "?"
	parameterSeparatorConstant  = "&"
	keyValueSeparatorConstant   = "="
)

// AnnouncementURL builds the pre-filled "new release" page for tag on the host of remoteURL.
func AnnouncementURL(remoteURL string, tag string, body string) (string, error) {
	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return "", parseError
	}

	parameters := []string{
		encodeParameter(tagQueryParameterConstant, tag),
		encodeParameter(titleQueryParameterConstant, tag),
	}
	if len(strings.TrimSpace(body)) > 0 {
		parameters = append(parameters, encodeParameter(bodyQueryParameterConstant, body))
	}
	return parsedRemote.WebURL() + newReleasePathConstant + querySeparatorConstant + strings.Join(parameters, parameterSeparatorConstant), nil
}

func encodeParameter(key string, value string) string {
	return key + keyValueSeparatorConstant + url.QueryEscape(value)
}
