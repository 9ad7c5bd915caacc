package signature

// antiBotSignatures is evaluated in order; order is reflected in results.
var antiBotSignatures = []Definition{
	{
		Name: "Cloudflare",
		ChallengePatterns: pats(
			`__cf_chl_`,
			`cf-challenge`,
			`cf_chl_opt`,
			`checking your browser`,
			`just a moment`,
			`cdn-cgi/challenge-platform`,
		),
		PresencePatterns: pats(
			`cloudflare`,
			`cf-ray`,
			`cf-turnstile`,
			`__cfduid`,
		),
	},
	{
		Name: "DataDome",
		ChallengePatterns: pats(
			`captcha-delivery\.com`,
			`dd_cookie`,
		),
		PresencePatterns: pats(
			`datadome`,
		),
	},
	{
		Name: "PerimeterX",
		ChallengePatterns: pats(
			`px-captcha`,
			`human challenge`,
		),
		PresencePatterns: pats(
			`perimeterx`,
			`_pxhd`,
			`_px3`,
		),
	},
	{
		Name: "Akamai Bot Manager",
		ChallengePatterns: pats(
			`sensor_data`,
		),
		PresencePatterns: pats(
			`akamai`,
			`_abck`,
			`bm_sz`,
			`ak_bmsc`,
		),
	},
	{
		Name: "Imperva Incapsula",
		ChallengePatterns: pats(
			`_incapsula_resource`,
		),
		PresencePatterns: pats(
			`incapsula`,
			`_incap_`,
			`visid_incap`,
			`imperva`,
		),
	},
	{
		Name: "Kasada",
		ChallengePatterns: pats(
			`kpsdk-message`,
		),
		PresencePatterns: pats(
			`kasada`,
			`kpsdk`,
		),
	},
	{
		Name: "reCAPTCHA",
		ChallengePatterns: pats(
			`recaptcha/api2/anchor`,
		),
		PresencePatterns: pats(
			`g-recaptcha`,
			`grecaptcha`,
			`recaptcha`,
		),
	},
	{
		Name: "hCaptcha",
		ChallengePatterns: pats(
			`hcaptcha\.com/captcha`,
		),
		PresencePatterns: pats(
			`h-captcha`,
			`hcaptcha`,
		),
	},
	{
		Name: "Arkose Labs",
		ChallengePatterns: pats(
			`funcaptcha`,
		),
		PresencePatterns: pats(
			`arkoselabs`,
			`arkose`,
		),
	},
}

// frameworkSignatures: rendering_likely_required marks frameworks that
// client-side render by default. Server-side frameworks (Next, Nuxt,
// Gatsby) usually ship meaningful HTML without a browser.
var frameworkSignatures = []FrameworkDefinition{
	{
		Name:                    "Next.js",
		Patterns:                pats(`__NEXT_DATA__`, `/_next/static`),
		RenderingLikelyRequired: false,
	},
	{
		Name:                    "Nuxt",
		Patterns:                pats(`__NUXT__`, `/_nuxt/`),
		RenderingLikelyRequired: false,
	},
	{
		Name:                    "Gatsby",
		Patterns:                pats(`___gatsby`, `gatsby-focus-wrapper`),
		RenderingLikelyRequired: false,
	},
	{
		Name:                    "React",
		Patterns:                pats(`data-reactroot`, `data-reactid`, `react-dom`),
		RenderingLikelyRequired: true,
	},
	{
		Name:                    "Vue",
		Patterns:                pats(`data-v-[0-9a-f]{8}`, `__vue__`, `vue(?:\.min)?\.js`),
		RenderingLikelyRequired: true,
	},
	{
		Name:                    "Angular",
		Patterns:                pats(`ng-version`, `ng-app`, `angular(?:\.min)?\.js`),
		RenderingLikelyRequired: true,
	},
	{
		Name:                    "Svelte",
		Patterns:                pats(`svelte-[0-9a-z]+`, `__svelte`),
		RenderingLikelyRequired: true,
	},
	{
		Name:                    "Ember",
		Patterns:                pats(`ember-application`, `ember(?:\.min)?\.js`),
		RenderingLikelyRequired: true,
	},
}

var technologySignatures = []TechnologyDefinition{
	// CMS
	{Name: "WordPress", Category: "cms", Patterns: pats(`wp-content`, `wp-includes`, `wp-json`)},
	{Name: "Drupal", Category: "cms", Patterns: pats(`drupal`, `sites/default/files`)},
	{Name: "Joomla", Category: "cms", Patterns: pats(`joomla`, `/media/jui/`)},
	{Name: "Ghost", Category: "cms", Patterns: pats(`ghost-sdk`, `data-ghost`)},

	// E-commerce
	{Name: "Shopify", Category: "ecommerce", Patterns: pats(`cdn\.shopify\.com`, `shopify`)},
	{Name: "Magento", Category: "ecommerce", Patterns: pats(`magento`, `mage/cookies`)},
	{Name: "WooCommerce", Category: "ecommerce", Patterns: pats(`woocommerce`)},
	{Name: "BigCommerce", Category: "ecommerce", Patterns: pats(`bigcommerce`)},

	// Analytics
	{Name: "Google Analytics", Category: "analytics", Patterns: pats(`google-analytics\.com`, `gtag\(`)},
	{Name: "Google Tag Manager", Category: "analytics", Patterns: pats(`googletagmanager\.com`)},
	{Name: "Segment", Category: "analytics", Patterns: pats(`cdn\.segment\.com`)},
	{Name: "Hotjar", Category: "analytics", Patterns: pats(`hotjar`)},
	{Name: "Mixpanel", Category: "analytics", Patterns: pats(`mixpanel`)},

	// Frontend libraries
	{Name: "jQuery", Category: "frontend", Patterns: pats(`jquery`)},
	{Name: "Bootstrap", Category: "frontend", Patterns: pats(`bootstrap(?:\.min)?\.(?:css|js)`)},
	{Name: "Tailwind CSS", Category: "frontend", Patterns: pats(`tailwind`)},
	{Name: "Font Awesome", Category: "frontend", Patterns: pats(`font-awesome`, `fontawesome`)},

	// Infrastructure
	{Name: "Cloudflare CDN", Category: "infrastructure", Patterns: pats(`cdn-cgi/`, `cf-ray`)},
	{Name: "Fastly", Category: "infrastructure", Patterns: pats(`fastly`)},
	{Name: "CloudFront", Category: "infrastructure", Patterns: pats(`cloudfront\.net`)},
	{Name: "Akamai CDN", Category: "infrastructure", Patterns: pats(`akamaized\.net`)},
}
