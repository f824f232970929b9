// internal/render/css.go
//
// Generated default stylesheet, parameterized by the resolved palette.
// Models that ship a bespoke templates_base/<model>/styles.css never see
// this one.
package render

import "fmt"

func defaultStylesheet(primary, secondary string, palette Palette) []byte {
	css := fmt.Sprintf(`/* Reset y variables */
* {
    margin: 0;
    padding: 0;
    box-sizing: border-box;
}

:root {
    --primary: %s;
    --secondary: %s;
    --accent: %s;
    --neutral: %s;
    --text: #333;
    --bg: #fff;
}

body {
    font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
    line-height: 1.6;
    color: var(--text);
}

.container {
    max-width: 1200px;
    margin: 0 auto;
    padding: 0 20px;
}

/* Header */
.header {
    background: var(--primary);
    color: white;
    padding: 1rem 0;
    box-shadow: 0 2px 5px rgba(0,0,0,0.1);
}

.header .container {
    display: flex;
    justify-content: space-between;
    align-items: center;
}

.logo {
    display: flex;
    align-items: center;
    gap: 1rem;
}

.logo .icon { font-size: 2rem; }
.logo h1 { font-size: 1.5rem; }
.logo img { height: 48px; }

.header nav { display: flex; gap: 2rem; }

.header nav a {
    color: white;
    text-decoration: none;
    transition: opacity 0.3s;
}

.header nav a:hover { opacity: 0.8; }

/* Hero */
.hero {
    background: linear-gradient(135deg, var(--primary), var(--secondary));
    background-size: cover;
    background-position: center;
    color: white;
    padding: 5rem 0;
    text-align: center;
}

.hero h2 { font-size: 3rem; margin-bottom: 1rem; }
.hero p { font-size: 1.5rem; margin-bottom: 2rem; }

.btn {
    display: inline-block;
    background: white;
    color: var(--primary);
    padding: 1rem 2rem;
    text-decoration: none;
    border-radius: 5px;
    font-weight: bold;
    transition: transform 0.3s;
}

.btn:hover { transform: translateY(-2px); }

/* Sections */
section { padding: 4rem 0; }

section h2 {
    text-align: center;
    font-size: 2.5rem;
    margin-bottom: 2rem;
    color: var(--primary);
}

/* About */
.about { background: var(--neutral); }

.about p {
    text-align: center;
    max-width: 800px;
    margin: 0 auto;
    font-size: 1.1rem;
}

.about .about-photo {
    display: block;
    max-width: 480px;
    width: 100%%;
    margin: 0 auto 2rem;
    border-radius: 10px;
}

/* Products */
.products-grid {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(280px, 1fr));
    gap: 2rem;
    margin-top: 2rem;
}

.product-card {
    background: white;
    border-radius: 10px;
    padding: 1.5rem;
    box-shadow: 0 2px 10px rgba(0,0,0,0.1);
    transition: transform 0.3s;
}

.product-card:hover { transform: translateY(-5px); }

.product-card img {
    width: 100%%;
    height: 200px;
    object-fit: cover;
    border-radius: 5px;
    margin-bottom: 1rem;
}

.product-card h3 { color: var(--primary); margin-bottom: 0.5rem; }

.product-card .price {
    display: block;
    font-size: 1.5rem;
    font-weight: bold;
    color: var(--secondary);
    margin-top: 1rem;
}

/* Gallery */
.gallery { background: var(--neutral); }

.gallery-grid {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(280px, 1fr));
    gap: 1.5rem;
    margin-top: 2rem;
}

.gallery-item {
    overflow: hidden;
    border-radius: 10px;
    box-shadow: 0 2px 10px rgba(0,0,0,0.1);
    transition: transform 0.3s;
    min-height: 250px;
}

.gallery-item:hover { transform: translateY(-5px); }

.gallery-item img {
    width: 100%%;
    height: 100%%;
    object-fit: cover;
    display: block;
}

/* Contact */
.contact { background: var(--accent); }

.contact-info { text-align: center; font-size: 1.2rem; }
.contact-info p { margin: 1rem 0; }

/* Footer */
.footer {
    background: var(--primary);
    color: white;
    text-align: center;
    padding: 2rem 0;
}

.footer .social-links {
    display: flex;
    justify-content: center;
    gap: 1.5rem;
    margin-bottom: 1.5rem;
}

.footer .social-links a { color: white; }

.footer .supporters {
    display: flex;
    justify-content: center;
    align-items: center;
    gap: 1.5rem;
    margin-bottom: 1.5rem;
}

.footer .supporters img { height: 40px; }

/* WhatsApp floating button */
.whatsapp-float {
    position: fixed;
    bottom: 20px;
    right: 20px;
    background: #25D366;
    color: white;
    width: 60px;
    height: 60px;
    border-radius: 50%%;
    display: flex;
    align-items: center;
    justify-content: center;
    box-shadow: 0 4px 12px rgba(37, 211, 102, 0.4);
    z-index: 1000;
}

.whatsapp-float svg { width: 32px; height: 32px; }

/* Responsive */
@media (max-width: 768px) {
    .header .container { flex-direction: column; gap: 1rem; }
    .hero h2 { font-size: 2rem; }
    .hero p { font-size: 1.2rem; }
    .whatsapp-float { width: 50px; height: 50px; bottom: 15px; right: 15px; }
}
`, primary, secondary, palette.Accent, palette.Neutral)

	return []byte(css)
}
