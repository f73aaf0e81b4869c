package artifact

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="gazeplot">
{{if .RunID}}<meta name="gazeplot-run" content="{{.RunID}}">
{{end}}{{if .Fingerprint}}<meta name="gazeplot-fingerprint" content="{{.Fingerprint}}">
{{end}}<title>{{.Title}}</title>
<script src="{{.ScriptURL}}"></script>
<style>
body { font-family: Arial, sans-serif; margin: 20px; background: #fff; color: #1a1a2e; }
h1 { text-align: center; color: #2649B2; font-size: 1.5rem; }
.controls { display: flex; justify-content: center; flex-wrap: wrap; gap: 20px; align-items: flex-end; padding: 20px; margin-bottom: 20px; background: #f8f9fa; border-radius: 12px; }
.control { display: flex; flex-direction: column; align-items: center; gap: 8px; }
.control label { font-weight: bold; color: #2649B2; font-size: 14px; }
.control select { padding: 10px 14px; border: 2px solid #2649B2; border-radius: 8px; color: #2649B2; font-size: 14px; min-width: 220px; }
button { padding: 10px 18px; border: none; border-radius: 8px; background: #2649B2; color: #fff; font-size: 14px; cursor: pointer; }
.main { display: flex; gap: 20px; }
#chart { flex: 1; height: 600px; background: #DBDBDB; border-radius: 8px; }
.sidebar { width: 200px; }
#back-btn, #legend { display: none; }
#legend { margin-top: 16px; padding: 12px; background: #f8f9fa; border-radius: 8px; }
#legend .title { font-weight: bold; margin-bottom: 8px; }
.legend-item { display: flex; align-items: center; gap: 10px; margin: 6px 0; }
.legend-circle { border-radius: 50%; background: #CCCCCC; border: 1px solid #999; }
footer { margin-top: 12px; text-align: center; font-size: 12px; color: #6c757d; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="controls">
  <div class="control"><label for="feeling-select">Feeling</label><select id="feeling-select"></select></div>
  <div class="control"><label for="x-select">X-Axis Metric</label><select id="x-select"></select></div>
  <div class="control"><label for="y-select">Y-Axis Metric</label><select id="y-select"></select></div>
  <button id="update-btn">Update Plot</button>
</div>
<div class="main">
  <div id="chart"></div>
  <div class="sidebar">
    <button id="back-btn">Back to Overview</button>
    <div id="legend"><div class="title">Circle Size = Clicks</div><div id="legend-items"></div></div>
  </div>
</div>
<footer>{{len .Feelings}} feelings, {{len .Metrics}} metrics{{if .Generated}} &middot; generated {{.Generated}}{{end}}</footer>
<script>
const lookupStore = {{json .Store}};
const feelings = {{json .Feelings}};
const metrics = {{json .Metrics}};
const sizing = { scale: {{json .Scale}}, minSize: {{json .MinSize}} };
const center = { color: {{json .CenterColor}}, size: {{json .CenterSize}} };
const noDataText = {{json .NoData}};
const starSymbol = 'path://M50 0 L61 35 L98 35 L68 57 L79 91 L50 70 L21 91 L32 57 L2 35 L39 35 Z';

let state = {{json .Initial}};

function combination(s) {
  const byX = lookupStore[s.feeling] || {};
  const byY = byX[s.x] || {};
  return byY[s.y] || { data: {}, max_clicks: 0 };
}

// reduce mirrors the navigation rules: invalid events leave the state unchanged.
function reduce(s, event) {
  switch (event.kind) {
  case 'select_group':
    if (s.kind !== 'overview' || !(event.value in combination(s).data)) return s;
    return { kind: 'detail', feeling: s.feeling, x: s.x, y: s.y, group: event.value };
  case 'back':
    if (s.kind !== 'detail') return s;
    return { kind: 'overview', feeling: s.feeling, x: s.x, y: s.y };
  case 'set_view':
    if (!(event.feeling in lookupStore) || metrics.indexOf(event.x) < 0 || metrics.indexOf(event.y) < 0) return s;
    return { kind: 'overview', feeling: event.feeling, x: event.x, y: event.y };
  }
  return s;
}

function pointSize(clicks) { return (clicks + 1) * sizing.scale; }

function legendEntries(maxClicks) {
  const steps = 5;
  const counts = [];
  if (maxClicks < steps) {
    for (let c = 0; c <= maxClicks; c++) counts.push(c);
  } else {
    for (let i = 0; i < steps; i++) {
      const c = Math.floor((maxClicks * i + Math.floor((steps - 1) / 2)) / (steps - 1));
      if (counts.length === 0 || counts[counts.length - 1] !== c) counts.push(c);
    }
  }
  return counts.map(c => ({ clicks: c, size: pointSize(c), label: c === 1 ? '1 click' : c + ' clicks' }));
}

// Sizes are compressed with a square root so large click counts stay on the canvas.
function diameter(size) { return Math.max(4, Math.sqrt(size) * 3); }

const chart = echarts.init(document.getElementById('chart'));

function axis(name) {
  return { name: name, nameLocation: 'middle', nameGap: 30, scale: true, splitLine: { lineStyle: { color: '#e0e0e0', width: 2 } } };
}

function render() {
  const comb = combination(state);
  const groups = Object.keys(comb.data);
  document.getElementById('back-btn').style.display = state.kind === 'detail' ? 'block' : 'none';
  document.getElementById('legend').style.display = state.kind === 'detail' ? 'block' : 'none';

  if (state.kind === 'detail') {
    const g = comb.data[state.group];
    const points = g.detail_names.map((name, i) => ({
      name: name,
      value: [g.detail_x[i], g.detail_y[i]],
      clicks: g.detail_choice[i],
      symbolSize: diameter(g.detail_size[i]),
      itemStyle: { color: g.detail_color[i], borderColor: '#DBDBDB' },
    }));
    chart.setOption({
      title: { text: state.group + ' Details (' + points.length + ' points) - ' + state.feeling, left: 'center' },
      tooltip: { formatter: p => '<b>' + p.data.name + '</b><br>' + state.group + '<br>' + state.x + ': ' + p.value[0].toFixed(2) + '<br>' + state.y + ': ' + p.value[1].toFixed(2) + '<br>Clicks: ' + p.data.clicks },
      xAxis: axis(state.x),
      yAxis: axis(state.y),
      graphic: [],
      series: [
        { type: 'scatter', data: points, label: { show: true, position: 'bottom', formatter: '{b}', color: '#808080', fontSize: 10 } },
        { type: 'scatter', symbol: starSymbol, symbolSize: center.size, itemStyle: { color: center.color, borderColor: '#000' },
          data: [{ name: 'Group center', value: [g.center_x, g.center_y], clicks: g.choice }] },
      ],
    }, true);
    const items = document.getElementById('legend-items');
    items.innerHTML = '';
    legendEntries(comb.max_clicks).forEach(e => {
      const row = document.createElement('div');
      row.className = 'legend-item';
      const dot = document.createElement('div');
      dot.className = 'legend-circle';
      dot.style.width = dot.style.height = diameter(e.size) + 'px';
      const label = document.createElement('span');
      label.textContent = e.label;
      row.appendChild(dot);
      row.appendChild(label);
      items.appendChild(row);
    });
    return;
  }

  const title = { text: state.y + ' vs ' + state.x + ' for ' + state.feeling, left: 'center' };
  if (groups.length === 0) {
    chart.setOption({
      title: title, xAxis: axis(state.x), yAxis: axis(state.y), series: [],
      graphic: [{ type: 'text', left: 'center', top: 'middle', style: { text: noDataText, fontSize: 16, fill: '#666' } }],
    }, true);
    return;
  }
  const markers = groups.map(name => {
    const g = comb.data[name];
    return {
      name: name,
      value: [g.center_x, g.center_y],
      clicks: g.choice,
      symbolSize: diameter(g.marker_size),
      itemStyle: { color: g.color, borderColor: '#DBDBDB', borderWidth: 4 },
    };
  });
  chart.setOption({
    title: title,
    tooltip: { formatter: p => '<b>' + p.data.name + '</b><br>Choice: ' + p.data.clicks + '<br><i>Click to explore!</i>' },
    xAxis: axis(state.x),
    yAxis: axis(state.y),
    graphic: [],
    series: [{ type: 'scatter', data: markers, label: { show: true, formatter: p => String(p.data.clicks), color: '#808080', fontSize: 16, fontWeight: 'bold' } }],
  }, true);
}

function dispatch(event) {
  state = reduce(state, event);
  render();
}

function fill(id, values, selected) {
  const el = document.getElementById(id);
  values.forEach(v => {
    const opt = document.createElement('option');
    opt.value = opt.textContent = v;
    opt.selected = v === selected;
    el.appendChild(opt);
  });
}

fill('feeling-select', feelings, state.feeling);
fill('x-select', metrics, state.x);
fill('y-select', metrics, state.y);

chart.on('click', p => {
  if (state.kind === 'overview' && p.seriesIndex === 0) dispatch({ kind: 'select_group', value: p.data.name });
});
document.getElementById('back-btn').addEventListener('click', () => dispatch({ kind: 'back' }));
document.getElementById('update-btn').addEventListener('click', () => dispatch({
  kind: 'set_view',
  feeling: document.getElementById('feeling-select').value,
  x: document.getElementById('x-select').value,
  y: document.getElementById('y-select').value,
}));
window.addEventListener('resize', () => chart.resize());
render();
</script>
</body>
</html>
`
