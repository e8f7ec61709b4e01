package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatPresign(w io.Writer, op PresignOp, result *PresignResult) error
	FormatPostPolicy(w io.Writer, result *PostPolicyResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatPresign formats a presigned URL as human-readable text.
func (f *HumanFormatter) FormatPresign(w io.Writer, op PresignOp, result *PresignResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.URL)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Presigned %s URL:\n%s\n", strings.ToUpper(string(op)), result.URL)
	return nil
}

// FormatPostPolicy formats a POST upload policy as human-readable text.
func (f *HumanFormatter) FormatPostPolicy(w io.Writer, result *PostPolicyResult) error {
	_, _ = fmt.Fprintf(w, "POST URL: %s\n", result.URL)
	if len(result.Fields) == 0 {
		return nil
	}

	maxKeyLen := 0
	for k := range result.Fields {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
	}

	_, _ = fmt.Fprintln(w, "Form fields:")
	for k, v := range result.Fields {
		_, _ = fmt.Fprintf(w, "  %-*s  %s\n", maxKeyLen, k, v)
	}
	return nil
}

// FormatList formats list results as human-readable text.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Objects) == 0 {
		_, _ = fmt.Fprintln(w, "No objects found")
		return nil
	}

	// Calculate column widths
	maxKeyLen := 3 // "KEY"
	for i := range result.Objects {
		if len(result.Objects[i].Key) > maxKeyLen {
			maxKeyLen = len(result.Objects[i].Key)
		}
	}
	if maxKeyLen > 60 {
		maxKeyLen = 60
	}

	// Print header
	_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxKeyLen, "KEY", "SIZE", "MODIFIED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxKeyLen), strings.Repeat("-", 10), strings.Repeat("-", 20))

	var totalSize int64
	for i := range result.Objects {
		obj := &result.Objects[i]
		key := obj.Key
		if len(key) > maxKeyLen {
			key = key[:maxKeyLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n",
			maxKeyLen,
			key,
			formatSize(obj.Size),
			obj.LastModified,
		)
		totalSize += obj.Size
	}

	_, _ = fmt.Fprintf(w, "\n%d object(s) (%s total)\n", len(result.Objects), formatSize(totalSize))

	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatPresign formats a presigned URL as JSON.
func (f *JSONFormatter) FormatPresign(w io.Writer, op PresignOp, result *PresignResult) error {
	output := struct {
		Operation string `json:"operation"`
		URL       string `json:"url"`
	}{
		Operation: string(op),
		URL:       result.URL,
	}
	return writeJSON(w, output)
}

// FormatPostPolicy formats a POST upload policy as JSON.
func (f *JSONFormatter) FormatPostPolicy(w io.Writer, result *PostPolicyResult) error {
	return writeJSON(w, result)
}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	// Calculate column widths
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
		if len(profiles[i].Endpoint) > maxEndpointLen {
			maxEndpointLen = len(profiles[i].Endpoint)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}
	if maxEndpointLen > 50 {
		maxEndpointLen = 50
	}

	// Print header
	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %-20s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", "USERNAME", "ACCESS KEY")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20), strings.Repeat("-", 20))

	// Print profiles
	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		endpoint := p.Endpoint
		if len(endpoint) > maxEndpointLen {
			endpoint = endpoint[:maxEndpointLen-3] + "..."
		}

		accessKey := maskSecret(p.AccessKey, showSecrets)

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %-20s  %s\n", marker, maxNameLen, name, maxEndpointLen, endpoint, p.Username, accessKey)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:       %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint:   %s\n", profile.Endpoint)
	if profile.Username != "" {
		_, _ = fmt.Fprintf(w, "Username:   %s\n", profile.Username)
		_, _ = fmt.Fprintf(w, "Password:   %s\n", maskSecret(profile.Password, showSecrets))
	}
	_, _ = fmt.Fprintf(w, "Access Key: %s\n", maskSecret(profile.AccessKey, showSecrets))
	_, _ = fmt.Fprintf(w, "Secret Key: %s\n", maskSecret(profile.SecretKey, showSecrets))
	if profile.Region != "" {
		_, _ = fmt.Fprintf(w, "Region:     %s\n", profile.Region)
	}
	return nil
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name      string `json:"name"`
		Endpoint  string `json:"endpoint"`
		Username  string `json:"username,omitempty"`
		AccessKey string `json:"access_key,omitempty"`
		SecretKey string `json:"secret_key,omitempty"`
		Region    string `json:"region,omitempty"`
		Default   bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		jp := jsonProfile{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Username: p.Username,
			Region:   p.Region,
			Default:  p.Name == defaultName,
		}
		if showSecrets {
			jp.AccessKey = p.AccessKey
			jp.SecretKey = p.SecretKey
		} else {
			jp.AccessKey = maskSecret(p.AccessKey, false)
			jp.SecretKey = maskSecret(p.SecretKey, false)
		}
		output.Profiles[i] = jp
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name      string `json:"name"`
		Endpoint  string `json:"endpoint"`
		Username  string `json:"username,omitempty"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
		Region    string `json:"region,omitempty"`
		Default   bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		Username: profile.Username,
		Region:   profile.Region,
		Default:  isDefault,
	}

	if showSecrets {
		output.AccessKey = profile.AccessKey
		output.SecretKey = profile.SecretKey
	} else {
		output.AccessKey = maskSecret(profile.AccessKey, false)
		output.SecretKey = maskSecret(profile.SecretKey, false)
	}

	return writeJSON(w, output)
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
