package render

const tmplDashboard = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Device Usage for {{.Date}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;margin:0;padding:16px;color:#000;background:#fff}
.headerChartGrid{font-size:26px;font-weight:bold;text-align:center;margin:12px 0}
.subheaderChart{font-size:18px;font-weight:bold;margin:8px 0}
.divGraphHolder,.divGridHolder{margin:0 auto 32px auto;max-width:1240px}
.chart{display:flex;justify-content:center}
.chart-empty{text-align:center;color:#666;padding:48px 0;border:1px dashed #ccc}
.legend{margin:0 auto;padding:5px;text-align:center;min-width:60%}
.grid-row{display:flex;flex-wrap:wrap}
.grid{box-sizing:border-box;padding:6px}
.legend-item{display:flex;align-items:center;justify-content:center;gap:8px}
.divColorCodeSquare{display:inline-block;width:20px;height:20px;border:1px solid #333}
table.usage-grid{border-collapse:collapse;width:100%}
table.usage-grid th,table.usage-grid td{border:1px solid #ccc;padding:8px;text-align:center;width:25%}
table.usage-grid th{background:#f0f0f0}
.footer{font-size:11px;color:#888;text-align:center}
</style>
</head>
<body>
<div class="divGraphHolder">
  <div class="headerChartGrid">Device Usage for {{.Date}}</div>
  {{if .Chart}}<div class="chart" style="width:{{.ChartWidth}}px;height:{{.ChartHeight}}px;margin:0 auto">{{.Chart}}</div>
  {{else}}<div class="chart-empty">No device usage to chart</div>{{end}}
  <div class="legend">
    <div class="subheaderChart">Legend</div>
    {{range .Legend}}<div class="grid-row">
      {{range .Cells}}<div class="grid" style="width:{{$.CellPercent}}%">
        <div class="legend-item"><div class="divColorCodeSquare" style="background-color:{{.Color}}"></div><div>DeviceId: {{.DeviceID}}</div></div>
      </div>{{end}}
    </div>{{end}}
  </div>
</div>

<div class="divGridHolder">
  <div class="headerChartGrid">Device Usage Grid for {{.Date}}</div>
  <table class="usage-grid">
    <thead>
      <tr><th>Device ID</th><th>Peak Usage</th><th>Total Usage</th><th>Color Code</th></tr>
    </thead>
    <tbody>
    {{range .Grid}}<tr>
      <td>{{.DeviceID}}</td>
      <td>{{.Peak}} at {{.PeakTime}}</td>
      <td>{{.Total}}</td>
      <td><div class="divColorCodeSquare" style="background-color:{{.Color}}"></div></td>
    </tr>
    {{end}}</tbody>
  </table>
</div>
<div class="footer">Source: {{.Source}} &middot; generated {{.GeneratedAt}}</div>
</body>
</html>
`
