package webui

const indexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Gemini Search</title>
  <style>
    body { font-family: "Segoe UI", sans-serif; margin: 0; background: linear-gradient(145deg,#f7fafc,#e9eef7); color: #1f2937; }
    .wrap { max-width: 900px; margin: 0 auto; padding: 20px; }
    .panel { background: #fff; border-radius: 12px; box-shadow: 0 8px 30px rgba(15,23,42,.08); padding: 16px; margin-bottom: 16px; }
    .row { display: flex; gap: 8px; }
    input[type=text] { flex: 1; padding: 10px; border: 1px solid #cbd5e1; border-radius: 8px; }
    select { padding: 10px; border: 1px solid #cbd5e1; border-radius: 8px; }
    button { padding: 10px 16px; border: 0; border-radius: 8px; background: #0f766e; color: #fff; cursor: pointer; }
    button:hover { background: #0d9488; }
    button:disabled { background: #94a3b8; cursor: default; }
    .recent { display: flex; flex-wrap: wrap; gap: 6px; align-items: center; margin-top: 12px; font-size: 13px; }
    .recent form { margin: 0; }
    .pill { background: #e2e8f0; color: #334155; border-radius: 999px; padding: 4px 12px; }
    .pill:hover { background: #cbd5e1; }
    .link { background: none; color: #64748b; padding: 4px; text-decoration: underline; }
    .link:hover { background: none; color: #0f172a; }
    .notice { color: #92400e; margin-top: 10px; }
    .error { border-left: 4px solid #dc2626; color: #991b1b; }
    .answer { white-space: pre-wrap; line-height: 1.6; }
    .head { display: flex; justify-content: space-between; align-items: center; }
    .sources a { color: #0f766e; font-weight: 600; }
    .sources li { margin-bottom: 8px; }
    .uri { display: block; color: #94a3b8; font-size: 12px; word-break: break-all; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="panel">
      <h2>Gemini Search</h2>
      <form id="search" method="post" action="/search">
        <div class="row">
          <input type="text" name="query" value="{{.Snapshot.Query}}" placeholder="Ask anything..." autofocus />
          <select name="focus">
            {{range .Focuses}}<option value="{{.}}"{{if eq . $.Snapshot.Focus}} selected{{end}}>{{.}}</option>{{end}}
          </select>
          <button id="submit" type="submit"{{if .Snapshot.Busy}} disabled{{end}}>{{if .Snapshot.Busy}}Searching...{{else}}Search{{end}}</button>
        </div>
      </form>
      {{if .Notice}}<div class="notice">{{.Notice}}</div>{{end}}
      {{if .Snapshot.Recent}}
      <div class="recent">
        <span>Recent:</span>
        {{range .Snapshot.Recent}}
        <form method="post" action="/replay"><input type="hidden" name="query" value="{{.}}" /><button class="pill" type="submit">{{.}}</button></form>
        {{end}}
        <form method="post" action="/history/clear"><button class="link" type="submit">Clear</button></form>
      </div>
      {{end}}
    </div>

    {{if .Snapshot.ErrorMessage}}
    <div class="panel error">{{.Snapshot.ErrorMessage}}</div>
    {{end}}

    {{with .Snapshot.Result}}
    <div class="panel">
      <div class="head">
        <h3>Answer</h3>
        <button id="copy" type="button">Copy</button>
      </div>
      <div id="answer" class="answer">{{.Answer}}</div>
    </div>
    {{if .Sources}}
    <div class="panel sources">
      <h3>Sources</h3>
      <ol>
        {{range .Sources}}
        <li><a href="{{.URI}}" target="_blank" rel="noopener noreferrer">{{.Title}}</a><span class="uri">{{.URI}}</span></li>
        {{end}}
      </ol>
    </div>
    {{end}}
    {{end}}
  </div>
  <script>
    const form = document.getElementById('search');
    const submit = document.getElementById('submit');
    form.addEventListener('submit', (e) => {
      if (!form.query.value.trim()) { e.preventDefault(); return; }
      submit.disabled = true;
      submit.textContent = 'Searching...';
    });
    const copy = document.getElementById('copy');
    if (copy) {
      copy.addEventListener('click', async () => {
        try {
          await navigator.clipboard.writeText(document.getElementById('answer').textContent);
          copy.textContent = 'Copied';
          setTimeout(() => { copy.textContent = 'Copy'; }, 2000);
        } catch (err) {
          console.error('Copy failed', err);
        }
      });
    }
  </script>
</body>
</html>
`
