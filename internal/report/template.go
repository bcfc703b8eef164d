package report

const pageTemplate = `<!doctype html>
<html lang="{{.Lang}}">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <style>
    :root{
      --text:#111827; --muted:#6b7280; --line:#e5e7eb; --bg:#ffffff;
      --good:#065f46; --bad:#7f1d1d;
      --red:#ef4444; --yellow:#f59e0b; --green:#10b981;
      --barH: 35px;
    }
    body{ margin:0; font-family:system-ui,-apple-system,Segoe UI,Roboto,Arial,sans-serif; background:var(--bg); color:var(--text); }
    .wrap{ max-width:900px; margin:32px auto; padding:0 16px; }
    h1{ margin:0 0 8px 0; }
    .muted{ color:var(--muted); }
    .card{ background:#fff; border:1px solid var(--line); border-radius:12px; padding:16px; margin-top:12px; }
    table{ width:100%; border-collapse:collapse; }
    th,td{ padding:8px; border-bottom:1px solid var(--line); text-align:left; vertical-align:top; }
    .small{ font-size:14px; color:var(--muted); }
    .section-title{ margin:0 0 16px 0; font-size:18px; }
    .threecol th:nth-child(1), .threecol td:nth-child(1){ width:40%; }
    .threecol th:nth-child(2), .threecol td:nth-child(2){ width:20%; white-space:nowrap; }
    .threecol th:nth-child(3), .threecol td:nth-child(3){ width:40%; color:var(--muted); }
    .scale{ margin:48px auto 32px auto; position:relative; max-width:760px; }
    .bar-wrap{ position:relative; overflow:visible; }
    .bar{ position:relative; height:var(--barH); border-radius:8px; overflow:hidden; box-shadow:inset 0 0 0 1px #11182712; }
    .seg{ position:absolute; top:0; height:100%; }
    .seg.red{ background:var(--red); left:0; width:50%; }
    .seg.yellow{ background:var(--yellow); left:50%; width:30%; }
    .seg.green{ background:var(--green); left:80%; width:20%; }
    .tick{ position:absolute; top:0; width:2px; height:100%; transform:translateX(-1px); background:#11182720; }
    .tick.minor{ opacity:.45; }
    .tick.major{ opacity:.8; }
    .tick-label{ position:absolute; top:calc(100% + 6px); transform:translateX(-50%); font-size:11px; font-weight:700; white-space:nowrap; }
    .score-marker{ position:absolute; top:0; height:100%; transform:translateX(-50%); z-index:2; }
    .score-pin{ position:absolute; top:0; bottom:0; left:50%; width:2px; background:#111827; opacity:.6; }
    .score-chip{ position:absolute; bottom:calc(100% + 8px); left:50%; transform:translateX(-50%); background:#111827; color:#fff; border-radius:8px; padding:6px 10px; font-weight:800; font-size:12px; white-space:nowrap; }
    .bandtext{ margin-top:24px; font-size:14px; color:var(--muted); }
    details summary{ color:#2563eb; cursor:pointer; font-size:14px; }
    details ul{ margin:6px 0 0 18px; padding:0; }
    .feedback ul{ margin:8px 0 0 18px; padding:0; }
    .feedback h3{ font-size:15px; margin:12px 0 4px 0; }
    .raw pre{ padding:12px; border-radius:8px; overflow:auto; font-size:12px; }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>{{.Title}}</h1>

    <div class="card">
      <div class="section-title">{{.ScoreTitle}}</div>
      <div class="scale">
        <div class="bar-wrap">
          <div class="bar">
            <div class="seg red"></div><div class="seg yellow"></div><div class="seg green"></div>
            {{- range .Minors}}
            <div class="tick minor" style="left:{{.}}%"></div>
            {{- end}}
            {{- range .Majors}}
            <div class="tick major" style="left:{{.Pos}}%"></div>
            {{- end}}
          </div>
          {{- range .Majors}}
          <div class="tick-label" style="left:{{.Pos}}%">{{.Label}}</div>
          {{- end}}
          <div class="score-marker" style="left:{{.Score}}%">
            <div class="score-chip">{{.Score}}/100</div>
            <div class="score-pin"></div>
          </div>
        </div>
        <div class="bandtext">{{.Band}}</div>
      </div>
    </div>

    <div class="card">
      <div class="section-title">{{.CountsTitle}}</div>
      <table class="threecol">
        <tr><th>{{.ColType}}</th><th>{{.ColValue}}</th><th>{{.ColExplain}}</th></tr>
        {{- range .Counts}}
        <tr>
          <td>{{.Name}}</td>
          <td>{{.Count}}</td>
          <td>
            {{.Desc}}
            {{- if .Examples}}
            <details id="{{.ID}}">
              <summary>{{$.ExamplesBtn}} ({{len .Examples}})</summary>
              <ul>
                {{- range .Examples}}
                <li>[{{.TurnIndex}}] {{.Text}}</li>
                {{- end}}
              </ul>
            </details>
            {{- end}}
          </td>
        </tr>
        {{- end}}
      </table>
    </div>

    <div class="card">
      <div class="section-title">{{.RatiosTitle}}</div>
      <table class="threecol">
        <tr><th>{{.ColType}}</th><th>{{.ColValue}}</th><th>{{.ColComment}}</th></tr>
        {{- range .Ratios}}
        <tr><td>{{.Name}}</td><td>{{.Value}}</td><td>{{.Desc}}</td></tr>
        {{- end}}
      </table>
    </div>

    <div class="card">
      <div class="section-title">{{.TopicsTitle}}</div>
      <table class="threecol">
        <tr><th>{{.ColType}}</th><th>{{.ColValue}}</th><th>{{.ColComment}}</th></tr>
        {{- range .Topics}}
        <tr><td>{{.Name}}</td><td>{{.Value}}</td><td>{{.Desc}}</td></tr>
        {{- end}}
      </table>
    </div>

    <div class="card feedback">
      <div class="section-title">{{.FbTitle}}</div>
      {{.Feedback}}
    </div>

    <div class="card raw">
      <details>
        <summary>{{.RawTitle}}</summary>
        {{.RawData}}
      </details>
    </div>

    <div class="small muted" style="margin-top:12px">{{.Disclaimer}}</div>
  </div>
</body>
</html>
`
