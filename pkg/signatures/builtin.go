// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package signatures

// builtinCatalog returns the signature set shipped with the binary. It is a
// representative, version-tagged catalog across the six phases, not a fixed
// target count: operators extend it with signatures/overrides.yaml or a
// synced cloud set (Store.Merge).
func builtinCatalog() []*Signature {
	return []*Signature{
		// --- InstallHooks ---------------------------------------------------
		{
			ID: "ih-npm-postinstall", Phase: PhaseInstallHooks, Severity: SeverityHigh, Weight: 8,
			Pattern:     `"(postinstall|preinstall|install)"\s*:\s*".*"`,
			Description: "package.json lifecycle script runs on install",
			Category:    "npm-lifecycle", ManifestOnly: true,
			LanguageHints: []string{"json"},
		},
		{
			ID: "ih-npm-postinstall-exec", Phase: PhaseInstallHooks, Severity: SeverityCritical, Weight: 12,
			Pattern:     `"(postinstall|preinstall)"\s*:\s*"[^"]*(curl|wget|node\s+-e|sh\s+-c|bash\s+-c)[^"]*"`,
			Description: "npm lifecycle script fetches or executes remote content",
			Category:    "npm-lifecycle", ManifestOnly: true,
			LanguageHints: []string{"json"},
		},
		{
			ID: "ih-pip-setup-cmdclass", Phase: PhaseInstallHooks, Severity: SeverityHigh, Weight: 9,
			Pattern:     `cmdclass\s*=\s*\{[^}]*(install|develop|egg_info)[^}]*\}`,
			Description: "setup.py overrides the install command class",
			Category:    "pip-lifecycle", ManifestOnly: true,
			LanguageHints: []string{"python"},
		},
		{
			ID: "ih-pip-setup-exec", Phase: PhaseInstallHooks, Severity: SeverityCritical, Weight: 11,
			Pattern:     `class\s+\w+\(install\)[\s\S]{0,400}(os\.system|subprocess\.|urllib|requests\.(get|post))`,
			Description: "custom install command in setup.py executes code or fetches a URL",
			Category:    "pip-lifecycle", ManifestOnly: true,
			LanguageHints: []string{"python"},
		},
		{
			ID: "ih-makefile-install-fetch", Phase: PhaseInstallHooks, Severity: SeverityHigh, Weight: 8,
			Pattern:     `^install\s*:.*\n(?:.*\n)*?\t.*(curl|wget)\s+.*\|\s*(sh|bash)`,
			Description: "Makefile install target pipes a remote download into a shell",
			Category:    "makefile-lifecycle", ManifestOnly: true,
		},
		{
			ID: "ih-ci-workflow-pull-request-target", Phase: PhaseInstallHooks, Severity: SeverityMedium, Weight: 6,
			Pattern:     `on:\s*\n(?:.*\n)*?\s*pull_request_target\s*:`,
			Description: "CI workflow triggers on pull_request_target, running with elevated secrets against untrusted refs",
			Category:    "ci-lifecycle", ManifestOnly: true,
			LanguageHints: []string{"yaml"},
		},
		{
			ID: "ih-mcp-manifest-install-exec", Phase: PhaseInstallHooks, Severity: SeverityCritical, Weight: 10,
			Pattern:     `"command"\s*:\s*"(bash|sh|curl|wget|node)"`,
			Description: "MCP tool manifest declares a shell or fetch command as its launch command",
			Category:    "mcp-lifecycle", ManifestOnly: true,
			LanguageHints: []string{"json"},
		},
		{
			ID: "ih-gemspec-extensions", Phase: PhaseInstallHooks, Severity: SeverityMedium, Weight: 6,
			Pattern:     `extensions\s*<<\s*['"]ext/extconf\.rb['"]`,
			Description: "gemspec declares a native extension built at install time",
			Category:    "gem-lifecycle", ManifestOnly: true,
		},
		{
			ID: "ih-cargo-build-script", Phase: PhaseInstallHooks, Severity: SeverityMedium, Weight: 5,
			Pattern:     `build\s*=\s*"build\.rs"`,
			Description: "Cargo.toml declares a build script executed at build time",
			Category:    "cargo-lifecycle", ManifestOnly: true,
		},

		// --- CodePatterns -----------------------------------------------------
		{
			ID: "cp-js-eval", Phase: PhaseCodePatterns, Severity: SeverityHigh, Weight: 6,
			Pattern:     `\beval\s*\(`,
			Description: "dynamic code evaluation via eval()",
			Category:    "dynamic-eval",
			LanguageHints: []string{"javascript", "typescript"},
		},
		{
			ID: "cp-js-function-ctor", Phase: PhaseCodePatterns, Severity: SeverityHigh, Weight: 6,
			Pattern:     `new\s+Function\s*\(`,
			Description: "code constructed and compiled at runtime via the Function constructor",
			Category:    "dynamic-eval",
			LanguageHints: []string{"javascript", "typescript"},
		},
		{
			ID: "cp-py-exec-eval", Phase: PhaseCodePatterns, Severity: SeverityHigh, Weight: 6,
			Pattern:     `\b(exec|eval)\s*\(`,
			Description: "dynamic code evaluation via exec()/eval()",
			Category:    "dynamic-eval",
			LanguageHints: []string{"python"},
		},
		{
			ID: "cp-child-process", Phase: PhaseCodePatterns, Severity: SeverityHigh, Weight: 7,
			Pattern:     `require\(['"]child_process['"]\)|\bchild_process\.(exec|execSync|spawn|spawnSync)\s*\(`,
			Description: "spawns an OS subprocess via the child_process API",
			Category:    "process-exec",
			LanguageHints: []string{"javascript", "typescript"},
		},
		{
			ID: "cp-py-subprocess-shell", Phase: PhaseCodePatterns, Severity: SeverityHigh, Weight: 7,
			Pattern:     `subprocess\.(Popen|call|run)\([^)]*shell\s*=\s*True`,
			Description: "subprocess invoked with shell=True",
			Category:    "process-exec",
			LanguageHints: []string{"python"},
		},
		{
			ID: "cp-os-system", Phase: PhaseCodePatterns, Severity: SeverityMedium, Weight: 5,
			Pattern:     `\bos\.system\s*\(`,
			Description: "shell command executed via os.system",
			Category:    "process-exec",
			LanguageHints: []string{"python"},
		},
		{
			ID: "cp-go-unsafe-pointer", Phase: PhaseCodePatterns, Severity: SeverityLow, Weight: 2,
			Pattern:     `\bunsafe\.Pointer\b`,
			Description: "use of unsafe.Pointer bypasses Go's type system",
			Category:    "unsafe-memory",
			LanguageHints: []string{"go"},
		},
		{
			ID: "cp-pickle-loads", Phase: PhaseCodePatterns, Severity: SeverityHigh, Weight: 7,
			Pattern:     `pickle\.(loads|load)\s*\(`,
			Description: "unpickling untrusted data can execute arbitrary code",
			Category:    "unsafe-deserialize",
			LanguageHints: []string{"python"},
		},
		{
			ID: "cp-yaml-unsafe-load", Phase: PhaseCodePatterns, Severity: SeverityMedium, Weight: 5,
			Pattern:     `yaml\.load\s*\((?:[^),]*\)|[^)]*Loader\s*=\s*yaml\.(?:Unsafe)?Loader\b)`,
			Description: "yaml.load without a safe loader can instantiate arbitrary objects",
			Category:    "unsafe-deserialize",
			LanguageHints: []string{"python"},
		},
		{
			ID: "cp-dynamic-require", Phase: PhaseCodePatterns, Severity: SeverityMedium, Weight: 5,
			Pattern:     `require\(\s*[a-zA-Z_$][\w$]*\s*\)`,
			Description: "module loaded dynamically via a variable require() argument",
			Category:    "dynamic-load",
			LanguageHints: []string{"javascript", "typescript"},
		},
		{
			ID: "cp-vm-module", Phase: PhaseCodePatterns, Severity: SeverityHigh, Weight: 6,
			Pattern:     `require\(['"]vm['"]\)|\bvm\.(runInNewContext|runInThisContext)\s*\(`,
			Description: "code executed in a separate V8 context via the vm module",
			Category:    "dynamic-eval",
			LanguageHints: []string{"javascript", "typescript"},
		},

		// --- NetworkExfil -------------------------------------------------
		{
			ID: "ne-webhook-site", Phase: PhaseNetworkExfil, Severity: SeverityCritical, Weight: 10,
			Pattern:     `webhook\.site|requestbin\.|pipedream\.net|burpcollaborator`,
			Description: "outbound request to a known data-exfiltration relay host",
			Category:    "exfil-host",
		},
		{
			ID: "ne-http-post-raw", Phase: PhaseNetworkExfil, Severity: SeverityMedium, Weight: 4,
			Pattern:     `\b(requests\.post|fetch\(|axios\.post|http\.request)\s*\(`,
			Description: "outbound HTTP POST request",
			Category:    "outbound-http",
		},
		{
			ID: "ne-raw-socket", Phase: PhaseNetworkExfil, Severity: SeverityMedium, Weight: 5,
			Pattern:     `\bsocket\.socket\s*\(\s*socket\.AF_INET`,
			Description: "raw TCP/UDP socket opened directly",
			Category:    "raw-socket",
			LanguageHints: []string{"python"},
		},
		{
			ID: "ne-dns-tunnel-lookup", Phase: PhaseNetworkExfil, Severity: SeverityHigh, Weight: 6,
			Pattern:     `dns\.(resolveTxt|resolve)\s*\(|dnspython|dns\.resolver\.resolve`,
			Description: "DNS TXT/record lookups consistent with DNS-tunneled exfiltration",
			Category:    "dns-tunnel",
		},
		{
			ID: "ne-reverse-tunnel-service", Phase: PhaseNetworkExfil, Severity: SeverityHigh, Weight: 7,
			Pattern:     `ngrok\.io|localtunnel\.me|serveo\.net|\bngrok\s+http\b`,
			Description: "reference to a reverse-tunnel exposure service",
			Category:    "reverse-tunnel",
		},
		{
			ID: "ne-discord-webhook", Phase: PhaseNetworkExfil, Severity: SeverityHigh, Weight: 7,
			Pattern:     `discord(app)?\.com/api/webhooks/\d+/`,
			Description: "hardcoded Discord webhook URL, a common exfiltration channel for stolen data",
			Category:    "exfil-host",
		},
		{
			ID: "ne-telegram-bot-api", Phase: PhaseNetworkExfil, Severity: SeverityMedium, Weight: 5,
			Pattern:     `api\.telegram\.org/bot\d+:`,
			Description: "hardcoded Telegram bot API token used as an exfiltration channel",
			Category:    "exfil-host",
		},
		{
			ID: "ne-curl-pipe-shell", Phase: PhaseNetworkExfil, Severity: SeverityCritical, Weight: 9,
			Pattern:     `curl\s+[^\n|]*\|\s*(sudo\s+)?(sh|bash)\b`,
			Description: "remote script downloaded and piped directly into a shell",
			Category:    "remote-exec",
		},

		// --- Credentials ----------------------------------------------------
		{
			ID: "cr-env-api-key", Phase: PhaseCredentials, Severity: SeverityMedium, Weight: 4,
			Pattern:     `(?:os\.environ(?:\.get)?|process\.env)\s*\[?\(?['"]?(AWS_SECRET|API_KEY|PRIVATE_KEY|AUTH_TOKEN|SECRET_KEY)`,
			Description: "reads an environment variable matching a known credential key pattern",
			Category:    "env-read",
		},
		{
			ID: "cr-credential-path", Phase: PhaseCredentials, Severity: SeverityHigh, Weight: 7,
			Pattern:     `\.(aws/credentials|ssh/id_rsa|npmrc|netrc|docker/config\.json|kube/config)\b`,
			Description: "reference to a well-known credential storage path",
			Category:    "credential-path",
		},
		{
			ID: "cr-aws-access-key-id", Phase: PhaseCredentials, Severity: SeverityHigh, Weight: 6,
			Pattern:     `\bAKIA[0-9A-Z]{16}\b`,
			Description: "string matching the AWS access key id format",
			Category:    "api-key-regex",
		},
		{
			ID: "cr-private-key-block", Phase: PhaseCredentials, Severity: SeverityCritical, Weight: 9,
			Pattern:     `-----BEGIN (RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----`,
			Description: "embedded PEM private key material",
			Category:    "key-material",
		},
		{
			ID: "cr-slack-token", Phase: PhaseCredentials, Severity: SeverityHigh, Weight: 6,
			Pattern:     `xox[baprs]-[0-9A-Za-z-]{10,}`,
			Description: "string matching the Slack token format",
			Category:    "api-key-regex",
		},
		{
			ID: "cr-github-token", Phase: PhaseCredentials, Severity: SeverityHigh, Weight: 6,
			Pattern:     `gh[pousr]_[0-9A-Za-z]{36,}`,
			Description: "string matching the GitHub personal access token format",
			Category:    "api-key-regex",
		},
		{
			ID: "cr-dotenv-read", Phase: PhaseCredentials, Severity: SeverityLow, Weight: 2,
			Pattern:     `dotenv\.config\(|require\(['"]dotenv['"]\)|from\s+dotenv\s+import`,
			Description: "reads a local .env file of secrets",
			Category:    "env-read",
		},
		{
			ID: "cr-browser-cookie-store", Phase: PhaseCredentials, Severity: SeverityHigh, Weight: 7,
			Pattern:     `Login Data|Cookies['"]?\s*\)|leveldb.*[Cc]ookies`,
			Description: "reference to browser cookie or saved-login storage files",
			Category:    "credential-path",
		},

		// --- Obfuscation ------------------------------------------------------
		{
			ID: "ob-base64-long-run", Phase: PhaseObfuscation, Severity: SeverityMedium, Weight: 4,
			Pattern:     `(?:atob|b64decode|Buffer\.from)\([\s"']*[A-Za-z0-9+/]{40,}={0,2}`,
			Description: "decodes a long base64-encoded payload",
			Category:    "encoded-payload",
		},
		{
			ID: "ob-hex-long-run", Phase: PhaseObfuscation, Severity: SeverityMedium, Weight: 4,
			Pattern:     `(?:fromhex|unhexlify|Buffer\.from\([^,]+,\s*['"]hex['"])\([\s"']*[0-9a-fA-F]{40,}`,
			Description: "decodes a long hex-encoded payload",
			Category:    "encoded-payload",
		},
		{
			ID: "ob-char-code-array", Phase: PhaseObfuscation, Severity: SeverityMedium, Weight: 4,
			Pattern:     `String\.fromCharCode\((?:\d+\s*,\s*){10,}\d+\)`,
			Description: "string reconstructed from a long array of character codes",
			Category:    "char-code-build",
		},
		{
			ID: "ob-unicode-homoglyph-run", Phase: PhaseObfuscation, Severity: SeverityLow, Weight: 3,
			Pattern:     `[\x{0430}\x{0435}\x{043e}\x{0440}\x{0441}\x{0445}]{3,}`,
			Description: "run of Cyrillic homoglyph characters mimicking Latin identifiers",
			Category:    "homoglyph",
		},
		{
			ID: "ob-packed-eval-string", Phase: PhaseObfuscation, Severity: SeverityHigh, Weight: 6,
			Pattern:     `eval\(function\(p,a,c,k,e,[rd]`,
			Description: "signature of a common JavaScript packer/minifier wrapping eval",
			Category:    "packer",
			LanguageHints: []string{"javascript", "typescript"},
		},
		{
			ID: "ob-rot13-decode", Phase: PhaseObfuscation, Severity: SeverityLow, Weight: 3,
			Pattern:     `codecs\.decode\([^,]+,\s*['"]rot_13['"]\)`,
			Description: "ROT13-decodes a string at runtime",
			Category:    "encoded-payload",
			LanguageHints: []string{"python"},
		},
		{
			ID: "ob-zero-width-chars", Phase: PhaseObfuscation, Severity: SeverityMedium, Weight: 4,
			Pattern:     `[\x{200b}\x{200c}\x{200d}\x{feff}]{2,}`,
			Description: "run of zero-width characters used to hide payload boundaries",
			Category:    "homoglyph",
		},

		// --- Provenance -------------------------------------------------------
		{
			ID: "pr-shallow-history", Phase: PhaseProvenance, Severity: SeverityLow, Weight: 2,
			Pattern:     ``,
			Description: "repository has a shallow or single-commit history",
			Category:    "vcs-metadata",
		},
		{
			ID: "pr-binary-in-source-tree", Phase: PhaseProvenance, Severity: SeverityMedium, Weight: 3,
			Pattern:     ``,
			Description: "binary executable present in a source-only tree",
			Category:    "filesystem-fact",
		},
		{
			ID: "pr-hidden-file", Phase: PhaseProvenance, Severity: SeverityLow, Weight: 1,
			Pattern:     ``,
			Description: "hidden file outside the conventional VCS/editor allowlist",
			Category:    "filesystem-fact",
		},
		{
			ID: "pr-suspicious-filename", Phase: PhaseProvenance, Severity: SeverityMedium, Weight: 3,
			Pattern:     ``,
			Description: "filename impersonates a common system or VCS file",
			Category:    "filesystem-fact",
		},
		{
			ID: "pr-double-extension", Phase: PhaseProvenance, Severity: SeverityMedium, Weight: 3,
			Pattern:     ``,
			Description: "filename carries a double extension commonly used to disguise an executable",
			Category:    "filesystem-fact",
		},
		{
			ID: "pr-oversize-file", Phase: PhaseProvenance, Severity: SeverityLow, Weight: 1,
			Pattern:     ``,
			Description: "file exceeded the per-file byte cap and was skipped unscanned",
			Category:    "filesystem-fact",
		},
	}
}
