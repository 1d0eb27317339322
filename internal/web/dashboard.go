package web

import "github.com/gofiber/fiber/v2"

// handleDashboard serves the main dashboard HTML.
func (s *Server) handleDashboard(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(dashboardHTML)
}

// handleDashboardJS serves the dashboard JavaScript.
func (s *Server) handleDashboardJS(c *fiber.Ctx) error {
	c.Set("Content-Type", "application/javascript; charset=utf-8")
	return c.SendString(dashboardJS)
}

// handleDashboardCSS serves the dashboard CSS.
func (s *Server) handleDashboardCSS(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/css; charset=utf-8")
	return c.SendString(dashboardCSS)
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>fluxqueue dashboard</title>
    <link rel="stylesheet" href="/dashboard.css">
    <link href="https://fonts.googleapis.com/css2?family=JetBrains+Mono:wght@400;500;700&family=Inter:wght@400;500;600;700&display=swap" rel="stylesheet">
</head>
<body>
    <div class="app">
        <aside class="sidebar">
            <div class="logo">
                <span class="logo-icon">⚡</span>
                <span class="logo-text">fluxqueue</span>
            </div>
            <nav class="nav">
                <a href="#" class="nav-item active" data-page="dashboard">
                    <span class="nav-icon">📊</span>
                    Queue
                </a>
                <a href="#" class="nav-item" data-page="events">
                    <span class="nav-icon">📝</span>
                    Events
                </a>
            </nav>
            <div class="sidebar-footer">
                <span class="version">v0.1.0-dev</span>
            </div>
        </aside>

        <main class="main">
            <header class="header">
                <h1 class="page-title">Queue</h1>
                <div class="header-actions">
                    <button class="btn btn-small" id="minimize-btn">⟲ minimize now</button>
                    <span class="status-indicator running" id="status-indicator">
                        <span class="status-dot"></span>
                        <span class="status-text">Live</span>
                    </span>
                </div>
            </header>

            <div class="content" id="dashboard-page">
                <section class="stats-grid">
                    <div class="stat-card glass-card">
                        <div class="stat-icon">🗂</div>
                        <div class="stat-content">
                            <span class="stat-value" id="queue-size">0</span>
                            <span class="stat-label">Queue Size</span>
                        </div>
                    </div>
                    <div class="stat-card glass-card">
                        <div class="stat-icon">▶️</div>
                        <div class="stat-content">
                            <span class="stat-value" id="active-seeds">0</span>
                            <span class="stat-label">Active Seeds</span>
                        </div>
                    </div>
                    <div class="stat-card glass-card">
                        <div class="stat-icon">⭐</div>
                        <div class="stat-content">
                            <span class="stat-value" id="favored-seeds">0</span>
                            <span class="stat-label">Favored</span>
                        </div>
                    </div>
                    <div class="stat-card glass-card anomaly-card">
                        <div class="stat-icon">⏳</div>
                        <div class="stat-content">
                            <span class="stat-value" id="pending-favored">0</span>
                            <span class="stat-label">Pending Favored</span>
                        </div>
                    </div>
                    <div class="stat-card glass-card">
                        <div class="stat-icon">🧭</div>
                        <div class="stat-content">
                            <span class="stat-value" id="frontier-edges">0</span>
                            <span class="stat-label">Frontier Edges</span>
                        </div>
                    </div>
                    <div class="stat-card glass-card">
                        <div class="stat-icon">🎲</div>
                        <div class="stat-content">
                            <span class="stat-value" id="alias-table-size">0</span>
                            <span class="stat-label">Alias Table Size</span>
                        </div>
                    </div>
                    <div class="stat-card glass-card">
                        <div class="stat-icon">🗃</div>
                        <div class="stat-content">
                            <span class="stat-value" id="cache-entries">0 / 0</span>
                            <span class="stat-label">Testcase Cache</span>
                        </div>
                    </div>
                    <div class="stat-card glass-card">
                        <div class="stat-icon">⏱️</div>
                        <div class="stat-content">
                            <span class="stat-value" id="elapsed-time">0s</span>
                            <span class="stat-label">Elapsed Time</span>
                        </div>
                    </div>
                </section>

                <section class="live-feed glass-card">
                    <div class="section-header">
                        <h2 class="section-title">📡 Live Event Feed</h2>
                        <button class="btn btn-small" id="clear-events">Clear</button>
                    </div>
                    <div class="log-container" id="event-container">
                        <div class="log-placeholder">
                            <span class="placeholder-icon">📭</span>
                            <span class="placeholder-text">Waiting for scheduler events...</span>
                        </div>
                    </div>
                </section>

                <section class="current-payload glass-card">
                    <h2 class="section-title">🕑 Last Minimization</h2>
                    <code class="payload-display" id="last-minimize">-</code>
                </section>
            </div>

            <div class="content hidden" id="events-page">
                <section class="glass-card">
                    <h2 class="section-title">📝 Event History</h2>
                    <div class="table-container">
                        <table class="data-table" id="events-table">
                            <thead>
                                <tr>
                                    <th>Time</th>
                                    <th>Kind</th>
                                    <th>Description</th>
                                </tr>
                            </thead>
                            <tbody></tbody>
                        </table>
                    </div>
                </section>
            </div>
        </main>
    </div>

    <script src="/dashboard.js"></script>
</body>
</html>`

const dashboardCSS = `:root {
    --bg-primary: #0a0a0f;
    --bg-secondary: #12121a;
    --bg-tertiary: #1a1a24;
    --text-primary: #ffffff;
    --text-secondary: #a0a0b0;
    --text-muted: #606070;
    --accent-primary: #00d4ff;
    --accent-secondary: #7c3aed;
    --accent-success: #10b981;
    --accent-warning: #f59e0b;
    --accent-danger: #ef4444;
    --border-color: rgba(255, 255, 255, 0.08);
    --glass-bg: rgba(255, 255, 255, 0.03);
    --glass-border: rgba(255, 255, 255, 0.08);
    --radius: 12px;
    --font-mono: 'JetBrains Mono', monospace;
    --font-sans: 'Inter', -apple-system, BlinkMacSystemFont, sans-serif;
}

* { margin: 0; padding: 0; box-sizing: border-box; }

body {
    font-family: var(--font-sans);
    background: var(--bg-primary);
    color: var(--text-primary);
    min-height: 100vh;
    overflow-x: hidden;
}

body::before {
    content: '';
    position: fixed;
    top: 0; left: 0; right: 0; bottom: 0;
    background:
        radial-gradient(circle at 20% 80%, rgba(0, 212, 255, 0.08) 0%, transparent 50%),
        radial-gradient(circle at 80% 20%, rgba(124, 58, 237, 0.08) 0%, transparent 50%),
        radial-gradient(circle at 40% 40%, rgba(16, 185, 129, 0.04) 0%, transparent 40%);
    pointer-events: none;
    z-index: -1;
}

.app { display: flex; min-height: 100vh; }

.sidebar {
    width: 240px;
    background: var(--bg-secondary);
    border-right: 1px solid var(--border-color);
    display: flex;
    flex-direction: column;
    position: fixed;
    height: 100vh;
    z-index: 100;
}

.logo { padding: 24px; display: flex; align-items: center; gap: 12px; border-bottom: 1px solid var(--border-color); }
.logo-icon { font-size: 28px; }
.logo-text {
    font-size: 20px;
    font-weight: 700;
    background: linear-gradient(135deg, var(--accent-primary), var(--accent-secondary));
    -webkit-background-clip: text;
    -webkit-text-fill-color: transparent;
    background-clip: text;
}

.nav { padding: 16px 12px; flex: 1; }
.nav-item {
    display: flex;
    align-items: center;
    gap: 12px;
    padding: 12px 16px;
    margin-bottom: 4px;
    border-radius: 8px;
    color: var(--text-secondary);
    text-decoration: none;
    transition: all 0.2s ease;
}
.nav-item:hover { background: var(--glass-bg); color: var(--text-primary); }
.nav-item.active {
    background: linear-gradient(135deg, rgba(0, 212, 255, 0.15), rgba(124, 58, 237, 0.15));
    color: var(--accent-primary);
    border: 1px solid rgba(0, 212, 255, 0.2);
}
.nav-icon { font-size: 18px; }

.sidebar-footer { padding: 16px 24px; border-top: 1px solid var(--border-color); }
.version { font-size: 12px; color: var(--text-muted); font-family: var(--font-mono); }

.main { flex: 1; margin-left: 240px; min-height: 100vh; }

.header {
    padding: 24px 32px;
    display: flex;
    justify-content: space-between;
    align-items: center;
    border-bottom: 1px solid var(--border-color);
    background: rgba(10, 10, 15, 0.8);
    backdrop-filter: blur(10px);
    position: sticky;
    top: 0;
    z-index: 50;
}

.header-actions { display: flex; align-items: center; gap: 12px; }

.page-title { font-size: 24px; font-weight: 600; }

.status-indicator {
    display: flex;
    align-items: center;
    gap: 8px;
    padding: 8px 16px;
    border-radius: 20px;
    background: var(--glass-bg);
    border: 1px solid var(--glass-border);
}
.status-dot { width: 8px; height: 8px; border-radius: 50%; background: var(--text-muted); }
.status-indicator.running .status-dot { background: var(--accent-success); animation: pulse 1.5s infinite; }

@keyframes pulse {
    0%, 100% { opacity: 1; transform: scale(1); }
    50% { opacity: 0.5; transform: scale(1.2); }
}

.status-text { font-size: 13px; font-weight: 500; color: var(--text-secondary); }

.content { padding: 24px 32px; }
.content.hidden { display: none; }

.glass-card {
    background: var(--glass-bg);
    border: 1px solid var(--glass-border);
    border-radius: var(--radius);
    padding: 24px;
    backdrop-filter: blur(10px);
    margin-bottom: 24px;
}

.section-title { font-size: 16px; font-weight: 600; margin-bottom: 20px; color: var(--text-primary); }
.section-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 16px; }
.section-header .section-title { margin-bottom: 0; }

.btn {
    display: flex;
    align-items: center;
    justify-content: center;
    gap: 8px;
    padding: 12px 24px;
    border-radius: 8px;
    font-size: 14px;
    font-weight: 600;
    border: none;
    cursor: pointer;
    transition: all 0.2s ease;
}
.btn-small {
    padding: 8px 16px;
    font-size: 12px;
    background: var(--bg-tertiary);
    border: 1px solid var(--border-color);
    color: var(--text-secondary);
}
.btn-small:hover { background: var(--bg-secondary); color: var(--text-primary); }

.stats-grid { display: grid; grid-template-columns: repeat(4, 1fr); gap: 16px; margin-bottom: 24px; }
.stat-card { display: flex; align-items: center; gap: 16px; padding: 20px; }
.stat-icon { font-size: 28px; }
.stat-content { display: flex; flex-direction: column; }
.stat-value { font-size: 24px; font-weight: 700; font-family: var(--font-mono); color: var(--text-primary); }
.stat-label { font-size: 12px; color: var(--text-muted); margin-top: 4px; }

.anomaly-card { border-color: rgba(245, 158, 11, 0.3); background: rgba(245, 158, 11, 0.05); }
.anomaly-card .stat-value { color: var(--accent-warning); }

.log-container { max-height: 400px; overflow-y: auto; font-family: var(--font-mono); font-size: 12px; }
.log-placeholder { display: flex; flex-direction: column; align-items: center; justify-content: center; padding: 48px; color: var(--text-muted); }
.placeholder-icon { font-size: 48px; margin-bottom: 16px; }
.placeholder-text { font-size: 14px; }

.log-entry { display: flex; gap: 12px; padding: 8px 12px; border-radius: 6px; margin-bottom: 4px; background: var(--bg-tertiary); align-items: center; }
.log-entry.favored { border-left: 3px solid var(--accent-success); }
.log-entry.minimize { border-left: 3px solid var(--accent-warning); background: rgba(245, 158, 11, 0.1); }
.log-entry.frontier { border-left: 3px solid var(--accent-primary); }

.log-time { color: var(--text-muted); min-width: 80px; }
.log-kind { font-weight: 600; min-width: 80px; text-transform: uppercase; font-size: 11px; }
.log-desc { flex: 1; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }

.payload-display {
    display: block;
    padding: 16px;
    background: var(--bg-tertiary);
    border-radius: 8px;
    font-family: var(--font-mono);
    font-size: 14px;
    color: var(--accent-primary);
    word-break: break-all;
}

.table-container { overflow-x: auto; }
.data-table { width: 100%; border-collapse: collapse; font-size: 13px; }
.data-table th, .data-table td { padding: 12px 16px; text-align: left; border-bottom: 1px solid var(--border-color); }
.data-table th { background: var(--bg-tertiary); font-weight: 600; color: var(--text-secondary); font-size: 11px; text-transform: uppercase; letter-spacing: 0.5px; }
.data-table tbody tr:hover { background: var(--glass-bg); }

::-webkit-scrollbar { width: 8px; height: 8px; }
::-webkit-scrollbar-track { background: var(--bg-tertiary); border-radius: 4px; }
::-webkit-scrollbar-thumb { background: var(--border-color); border-radius: 4px; }
::-webkit-scrollbar-thumb:hover { background: var(--text-muted); }

@media (max-width: 1400px) {
    .stats-grid { grid-template-columns: repeat(2, 1fr); }
}

@media (max-width: 1024px) {
    .sidebar { width: 200px; }
    .main { margin-left: 200px; }
}`

const dashboardJS = `// fluxqueue dashboard client

class FluxQueueDashboard {
    constructor() {
        this.ws = null;
        this.events = [];
        this.maxEvents = 100;
        this.init();
    }

    init() {
        this.bindEvents();
        this.connectWebSocket();
    }

    bindEvents() {
        document.querySelectorAll('.nav-item').forEach(item => {
            item.addEventListener('click', (e) => {
                e.preventDefault();
                this.navigateTo(item.dataset.page);
            });
        });

        document.getElementById('minimize-btn').addEventListener('click', () => this.requestMinimize());
        document.getElementById('clear-events').addEventListener('click', () => this.clearEvents());
    }

    navigateTo(page) {
        document.querySelectorAll('.nav-item').forEach(item => {
            item.classList.toggle('active', item.dataset.page === page);
        });

        const titles = { dashboard: 'Queue', events: 'Events' };
        document.querySelector('.page-title').textContent = titles[page] || 'Queue';

        document.querySelectorAll('.content').forEach(content => content.classList.add('hidden'));
        const pageEl = document.getElementById(page + '-page');
        if (pageEl) pageEl.classList.remove('hidden');
    }

    connectWebSocket() {
        const protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
        const wsUrl = protocol + '//' + window.location.host + '/ws';

        this.ws = new WebSocket(wsUrl);

        this.ws.onmessage = (event) => {
            const message = JSON.parse(event.data);
            this.handleMessage(message);
        };

        this.ws.onclose = () => {
            setTimeout(() => this.connectWebSocket(), 2000);
        };
    }

    handleMessage(message) {
        switch (message.type) {
            case 'stats':
                this.updateStats(message.data);
                break;
            case 'event':
                this.addEvent(message.data);
                break;
        }
    }

    updateStats(stats) {
        document.getElementById('queue-size').textContent = this.formatNumber(stats.queueSize);
        document.getElementById('active-seeds').textContent = this.formatNumber(stats.activeSeeds);
        document.getElementById('favored-seeds').textContent = this.formatNumber(stats.favoredSeeds);
        document.getElementById('pending-favored').textContent = this.formatNumber(stats.pendingFavored);
        document.getElementById('frontier-edges').textContent = this.formatNumber(stats.frontierEdges);
        document.getElementById('alias-table-size').textContent = this.formatNumber(stats.aliasTableSize);
        document.getElementById('cache-entries').textContent = stats.cacheEntries + ' / ' + stats.cacheMaxEntries;
        document.getElementById('elapsed-time').textContent = stats.elapsedTime || '0s';
        if (stats.lastMinimizeAt) {
            document.getElementById('last-minimize').textContent = new Date(stats.lastMinimizeAt).toLocaleString();
        }
    }

    addEvent(ev) {
        this.events.unshift(ev);
        if (this.events.length > this.maxEvents) this.events.pop();
        this.renderEvents();
    }

    renderEvents() {
        const container = document.getElementById('event-container');

        if (this.events.length === 0) {
            container.innerHTML = '<div class="log-placeholder"><span class="placeholder-icon">📭</span><span class="placeholder-text">Waiting for scheduler events...</span></div>';
            return;
        }

        container.innerHTML = this.events.map(ev => {
            const time = new Date(ev.timestamp).toLocaleTimeString();
            return '<div class="log-entry ' + ev.kind + '">' +
                '<span class="log-time">' + time + '</span>' +
                '<span class="log-kind">' + ev.kind + '</span>' +
                '<span class="log-desc">' + ev.description + '</span>' +
            '</div>';
        }).join('');
    }

    clearEvents() {
        this.events = [];
        this.renderEvents();
    }

    async requestMinimize() {
        try {
            await fetch('/api/minimize', { method: 'POST' });
        } catch (error) {
            console.error('Failed to request minimize:', error);
        }
    }

    formatNumber(num) {
        if (num >= 1000000) return (num / 1000000).toFixed(1) + 'M';
        if (num >= 1000) return (num / 1000).toFixed(1) + 'K';
        return num.toString();
    }
}

document.addEventListener('DOMContentLoaded', () => {
    window.dashboard = new FluxQueueDashboard();
});`
