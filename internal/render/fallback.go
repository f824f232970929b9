// internal/render/fallback.go
//
// Built-in generic page template.  Any model without a bespoke
// templates_base/<model>/index.html still yields a complete, navigable
// single-page site: header/nav, hero, about, product grid, contact, and
// footer.  Keeps the same section IDs the bespoke templates use so the
// generated stylesheet works for both.
package render

const fallbackPage = `<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{ .SiteName }}</title>
    <meta name="description" content="{{ .SiteDescription }}">
    <link rel="stylesheet" href="styles.css">
</head>
<body>
    <header class="header">
        <div class="container">
            <div class="logo">
                {{ if .LogoURL }}<img src="{{ .LogoURL }}" alt="{{ .SiteName }}">{{ else }}<span class="icon">{{ .ModelIcon }}</span>{{ end }}
                <h1>{{ .SiteName }}</h1>
            </div>
            <nav>
                <a href="#inicio">Inicio</a>
                <a href="#nosotros">Nosotros</a>
                <a href="#productos">Productos</a>
                <a href="#contacto">Contacto</a>
            </nav>
        </div>
    </header>

    <section id="inicio" class="hero"{{ if .HeroImage }} style="background-image: url('{{ .HeroImage }}')"{{ end }}>
        <div class="container">
            <h2>{{ .HeroTitle }}</h2>
            <p>{{ .HeroSubtitle }}</p>
            <a href="#contacto" class="btn">Contáctanos</a>
        </div>
    </section>

    <section id="nosotros" class="about">
        <div class="container">
            <h2>Sobre Nosotros</h2>
            {{ if .AboutImage }}<img class="about-photo" src="{{ .AboutImage }}" alt="{{ .SiteName }}">{{ end }}
            <p>{{ .AboutText }}</p>
        </div>
    </section>

    <section id="productos" class="products">
        <div class="container">
            <h2>Nuestros Productos</h2>
            <div class="products-grid">
                {{ range .Products }}
                <div class="product-card">
                    {{ if .Image }}<img src="{{ .Image }}" alt="{{ .Name }}">{{ end }}
                    <h3>{{ .Name }}</h3>
                    <p>{{ .Description }}</p>
                    {{ if .Price }}<span class="price">${{ .Price }}</span>{{ end }}
                </div>
                {{ end }}
            </div>
        </div>
    </section>

    {{ if .Gallery }}
    <section id="galeria" class="gallery">
        <div class="container">
            <h2>Galería</h2>
            <div class="gallery-grid">
                {{ range .Gallery }}
                <div class="gallery-item"><img src="{{ . }}" alt=""></div>
                {{ end }}
            </div>
        </div>
    </section>
    {{ end }}

    <section id="contacto" class="contact">
        <div class="container">
            <h2>Contáctanos</h2>
            <div class="contact-info">
                {{ if .ContactEmail }}<p>📧 {{ .ContactEmail }}</p>{{ end }}
                {{ if .ContactPhone }}<p>📱 {{ .ContactPhone }}</p>{{ end }}
                {{ if .ContactAddress }}<p>📍 {{ .ContactAddress }}</p>{{ end }}
            </div>
        </div>
    </section>

    {{ if .WhatsappNumber }}
    <a class="whatsapp-float" href="https://wa.me/{{ .WhatsappNumber }}" target="_blank" rel="noopener" aria-label="WhatsApp">
        <svg viewBox="0 0 24 24" fill="currentColor"><path d="M12 2a10 10 0 0 0-8.6 15.1L2 22l5-1.3A10 10 0 1 0 12 2Zm5.1 14.3c-.2.6-1.2 1.2-1.7 1.2-.4.1-1 .1-1.6-.1a14 14 0 0 1-6.5-5.7c-.5-.9-.8-1.9-.8-2.6 0-.8.4-1.5.8-1.8.3-.3.6-.3.8-.3h.6c.2 0 .4 0 .6.5l.9 2.1c.1.2.1.4 0 .6l-.4.6c-.1.2-.3.4-.1.7.2.4.8 1.3 1.7 2.1 1.2 1 2.1 1.3 2.5 1.5.3.1.5.1.7-.1l.8-1c.2-.3.4-.2.7-.1l2 1c.3.1.5.2.5.4 0 .1 0 .6-.2 1Z"/></svg>
    </a>
    {{ end }}

    <footer class="footer">
        <div class="container">
            {{ if or .FacebookURL .InstagramURL .TiktokURL }}
            <div class="social-links">
                {{ if .FacebookURL }}<a href="{{ .FacebookURL }}" target="_blank" rel="noopener">Facebook</a>{{ end }}
                {{ if .InstagramURL }}<a href="{{ .InstagramURL }}" target="_blank" rel="noopener">Instagram</a>{{ end }}
                {{ if .TiktokURL }}<a href="{{ .TiktokURL }}" target="_blank" rel="noopener">TikTok</a>{{ end }}
            </div>
            {{ end }}
            {{ if .Supporters }}
            <div class="supporters">
                {{ range .Supporters }}
                {{ if .Logo }}<img src="{{ .Logo }}" alt="{{ .Name }}">{{ else }}<span class="supporter-badge">{{ .Name }}</span>{{ end }}
                {{ end }}
            </div>
            {{ end }}
            <p>&copy; {{ .CurrentYear }} {{ .SiteName }}. Todos los derechos reservados.</p>
        </div>
    </footer>

    <script src="tracking.js"></script>
</body>
</html>`
