package handlers

import "net/http"

// DashboardHandler отдаёт встроенную страницу dashboard.
// Страница тянет данные через /api/v1 и слушает /ws/stream,
// отдельных статических файлов у сервера нет.
type DashboardHandler struct{}

// NewDashboardHandler создаёт handler страницы dashboard
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// GetDashboard обрабатывает GET /
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Triangular Arbitrage Bot</title>
<style>
  body { font-family: monospace; background: #111; color: #ddd; margin: 2em; }
  h1 { color: #6cf; }
  table { border-collapse: collapse; margin-top: 1em; width: 100%; }
  th, td { border: 1px solid #333; padding: 4px 10px; text-align: left; }
  th { background: #1a1a1a; color: #6cf; }
  .profit { color: #6f6; }
  .failed { color: #f66; }
  #stats span { margin-right: 2em; }
</style>
</head>
<body>
<h1>Triangular Arbitrage Bot</h1>
<div id="stats">
  <span>trades: <b id="total">0</b></span>
  <span>profitable: <b id="profitable">0</b></span>
  <span>total profit: <b id="totalProfit" class="profit">0.00</b></span>
  <span>best: <b id="best" class="profit">0.00</b></span>
</div>
<table>
  <thead>
    <tr><th>id</th><th>triangle</th><th>profit %</th><th>profit</th><th>status</th><th>time</th></tr>
  </thead>
  <tbody id="trades"></tbody>
</table>
<script>
function renderStats(s) {
  document.getElementById('total').textContent = s.total_trades;
  document.getElementById('profitable').textContent = s.profitable;
  document.getElementById('totalProfit').textContent = s.total_profit.toFixed(2);
  document.getElementById('best').textContent = s.best_trade.toFixed(2);
}
function renderTrades(trades) {
  var rows = trades.map(function(t) {
    var cls = t.status === 'failed' ? 'failed' : 'profit';
    return '<tr><td>' + t.id + '</td><td>' + t.triangle +
      '</td><td class="' + cls + '">' + t.profit_pct.toFixed(3) +
      '</td><td class="' + cls + '">' + t.profit.toFixed(2) +
      '</td><td>' + t.status + '</td><td>' + t.timestamp + '</td></tr>';
  });
  document.getElementById('trades').innerHTML = rows.join('');
}
function refresh() {
  fetch('/api/v1/stats').then(function(r) { return r.json(); }).then(renderStats);
  fetch('/api/v1/trades?limit=50').then(function(r) { return r.json(); }).then(renderTrades);
}
refresh();
setInterval(refresh, 5000);
try {
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + '/ws/stream');
  ws.onmessage = function(ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === 'statsUpdate') renderStats(msg.data);
    if (msg.type === 'tradeExecuted') refresh();
  };
} catch (e) { /* без WS страница живёт на периодическом refresh */ }
</script>
</body>
</html>
`
