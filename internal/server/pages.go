package server

const layoutHTML = `<!doctype html><html lang="de"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title><link rel="icon" href="/favicon.svg" type="image/svg+xml">
<meta name="csrf-token" content="{{.CSRF}}">
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap-icons@1.11.3/font/bootstrap-icons.min.css">
<style>
#aufgaben-table{max-height:80vh;overflow:auto}
.z-1000{z-index:1000}.z-1020{z-index:1020}
.sticky-right{position:sticky;right:0;background:#fff}
.hovercard{display:inline-block;position:relative}
.hovercard .card{display:none;position:absolute;top:1.2em;left:0;z-index:9999;background:#fff;border:1px solid #d0d7de;box-shadow:0 8px 24px rgba(140,149,159,0.2);border-radius:6px;max-width:min(90vw,420px);max-height:50vh;overflow:auto;padding:8px;text-align:left}
.hovercard:hover .card{display:block}
.actionlog{margin-top:16px;border-top:1px solid #eee;padding-top:8px;font-size:13px}
.actionlog pre{background:#fff;border:1px solid #d0d7de;padding:8px;max-height:160px;overflow:auto}
.actionlog .ts{color:#6a737d}
.actionlog .failed{color:#991b1b}
</style>
</head><body class="p-3">
<nav class="nav nav-pills mb-3">
  <a href="/aufgaben" class="nav-link{{if eq .Active "aufgaben"}} active{{end}}">Aufgaben</a>
  <a href="/__actions" class="nav-link{{if eq .Active "actions"}} active{{end}}">Aktionen</a>
  {{if .User}}<span class="ms-auto navbar-text small text-muted">{{.User}}</span>{{end}}
</nav>
{{with .Flash}}<div class="alert {{.AlertClass}} alert-dismissible" role="alert">{{.Text}}<button type="button" class="btn-close" data-bs-dismiss="alert" aria-label="Schließen"></button></div>{{end}}
<div id="client-alert" class="alert alert-danger d-none" role="alert"></div>
{{template "content" .}}
{{if .ShowLog}}<div class="actionlog"><div class="d-flex justify-content-between align-items-center"><strong>Letzte Aktionen</strong>{{if .LogMore}}<a href="{{.LogMore}}">alle anzeigen</a>{{end}}</div>
<pre>{{range .LogLines}}<span class="ts">{{.When}}</span> <span{{if .Failed}} class="failed"{{end}}>{{.Text}}</span>
{{else}}Noch keine Aktionen.{{end}}</pre></div>{{end}}
<script src="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/js/bootstrap.bundle.min.js"></script>
<script>
(function(){
  var meta = document.querySelector('meta[name="csrf-token"]');
  var csrf = meta ? meta.content : '';
  function showError(msg){
    var box = document.getElementById('client-alert');
    box.textContent = msg;
    box.classList.remove('d-none');
  }
  function filterRows(input){
    var q = input.value.trim().toLowerCase();
    document.querySelectorAll(input.dataset.rowFilter).forEach(function(tr){
      tr.classList.toggle('d-none', q !== '' && tr.dataset.searchTerm.indexOf(q) === -1);
    });
  }
  function loadSubsteps(btn){
    var target = document.getElementById('zwischenschritteModalContent');
    if (!target) return;
    target.innerHTML = '<div class="d-flex justify-content-center p-5"><div class="spinner-border text-primary" role="status"><span class="visually-hidden">Loading...</span></div></div>';
    fetch(btn.dataset.substepsUrl, {headers: {'Accept': 'text/html'}})
      .then(function(r){ if (!r.ok) throw new Error(r.status); return r.text(); })
      .then(function(html){ target.innerHTML = html; btn.dataset.loaded = 'true'; })
      .catch(function(){ target.innerHTML = '<div class="alert alert-danger">Fehler beim Laden der Zwischenschritte</div>'; });
  }
  document.addEventListener('input', function(e){
    if (e.target.matches('[data-row-filter]')) filterRows(e.target);
  });
  document.addEventListener('click', function(e){
    var reset = e.target.closest('[data-reset-search]');
    if (reset) {
      var inp = document.getElementById(reset.dataset.resetSearch);
      if (inp) { inp.value = ''; filterRows(inp); }
      return;
    }
    var load = e.target.closest('.btn-load-substeps');
    if (load) loadSubsteps(load);
  });
  var seq = {};
  document.addEventListener('change', function(e){
    var box = e.target;
    if (!box.matches('input[data-toggle-url]')) return;
    var key = box.dataset.taskId + ':' + box.dataset.stepId;
    var tok = seq[key] = (seq[key] || 0) + 1;
    var wanted = box.checked;
    fetch(box.dataset.toggleUrl, {
      method: 'POST',
      headers: {'Content-Type': 'application/json', 'Accept': 'application/json', 'X-CSRFToken': csrf},
      body: JSON.stringify({status: wanted})
    })
      .then(function(r){ return r.json().then(function(d){ return {status: r.status, data: d}; }); })
      .then(function(res){
        if (seq[key] !== tok || res.status === 409) return;
        if (!res.data.success) {
          box.checked = !wanted;
          showError(res.data.error || 'Zwischenschritt konnte nicht gespeichert werden');
          return;
        }
        var badge = document.getElementById('pending-badge-' + res.data.task_id);
        if (badge && res.data.badge_html) badge.outerHTML = res.data.badge_html;
        var cell = document.getElementById('task-table-row-' + res.data.task_id);
        if (cell) cell.classList.toggle('table-success', !!res.data.zwischenschritte_done);
      })
      .catch(function(){
        if (seq[key] !== tok) return;
        box.checked = !wanted;
        showError('Zwischenschritt konnte nicht gespeichert werden');
      });
  });
  ['shown.bs.collapse', 'hidden.bs.collapse'].forEach(function(ev){
    document.addEventListener(ev, function(e){
      var name = e.target.dataset.panel;
      if (!name) return;
      var body = new URLSearchParams({panel: name, open: ev === 'shown.bs.collapse', csrf_token: csrf});
      fetch('/aufgaben/panels', {method: 'POST', body: body}).catch(function(){});
    });
  });
  document.querySelectorAll('[data-bs-toggle="tooltip"]').forEach(function(el){ new bootstrap.Tooltip(el); });
})();
</script>
</body></html>`

const aufgabenPageHTML = `<div class="d-flex justify-content-between align-items-center mb-2">
  <h1 class="h4 m-0">Aufgaben</h1>
  <button class="btn btn-sm btn-outline-secondary" type="button" data-bs-toggle="collapse" data-bs-target="#filterPanel" aria-expanded="{{.FilterOpen}}" aria-controls="filterPanel"><i class="bi bi-funnel"></i> Filter</button>
</div>
<div id="filterPanel" data-panel="filter" class="collapse{{if .FilterOpen}} show{{end}} mb-2">
  <form method="get" action="/aufgaben" class="row g-2 align-items-end">
    <div class="col-auto"><label class="form-label small mb-0" for="cluster">Personengruppe</label><input class="form-control form-control-sm" id="cluster" name="cluster" value="{{.Selection.PersonCluster}}" placeholder="alle"></div>
    <div class="col-auto"><label class="form-label small mb-0" for="f">Aufgabengruppe</label><input class="form-control form-control-sm" id="f" name="f" value="{{.Selection.TaskCluster}}" placeholder="alle"></div>
    <div class="col-auto"><button class="btn btn-sm btn-primary" type="submit">Anwenden</button> <a class="btn btn-sm btn-link" href="/aufgaben?cluster=None&amp;f=None">Zurücksetzen</a></div>
  </form>
</div>
{{if .Error}}<div class="alert alert-danger" role="alert">Tabelle konnte nicht geladen werden: {{.Error}}</div>{{else}}{{.Table}}{{end}}
<div class="modal fade" id="taskZwischenschritteModal" tabindex="-1" aria-hidden="true"><div class="modal-dialog"><div class="modal-content"><div class="modal-header"><h5 class="modal-title">Zwischenschritte</h5><button type="button" class="btn-close" data-bs-dismiss="modal" aria-label="Schließen"></button></div><div class="modal-body" id="zwischenschritteModalContent"></div></div></div></div>`

const deletePageHTML = `<h1 class="h4">Datei löschen</h1>
<p>Soll die Datei <strong>{{.FileName}}</strong> der Aufgabe <strong>{{.TaskName}}</strong> von <strong>{{.UserName}}</strong> wirklich gelöscht werden?</p>
<form method="post" action="{{.Action}}">
  <input type="hidden" name="csrf_token" value="{{.CSRF}}">
  <input type="hidden" name="next" value="{{.Next}}">
  <button class="btn btn-danger" type="submit"><i class="bi bi-trash me-1"></i>Löschen</button>
  <a class="btn btn-link" href="{{.Next}}">Abbrechen</a>
</form>`

const actionsPageHTML = `<h1 class="h4">Letzte Aktionen</h1>
<table class="table table-sm">
  <thead><tr><th style="width:180px;">Zeit</th><th>Aktion</th></tr></thead>
  <tbody>
  {{range .Entries}}<tr{{if .Failed}} class="table-danger"{{end}}><td>{{.When}}</td><td>{{.Text}}</td></tr>
  {{else}}<tr><td colspan="2" class="text-muted">Noch keine Aktionen.</td></tr>{{end}}
  </tbody>
</table>`

const errorPageHTML = `<div class="alert alert-danger" role="alert">{{.Error}}</div>
<a href="/aufgaben">Zurück zur Tabelle</a>`
