package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Hotseat</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Hotseat</span>
        <h1>One question. Three guesses. Sixty seconds.</h1>
        <p>Create a session or join with a friend's session code.</p>
      </header>

      <section class="panel">
        <h2>Play</h2>
        <form id="playForm">
          <input name="session" placeholder="Session code" autocomplete="off" required/>
          <input name="username" placeholder="Username" autocomplete="nickname" required/>
          <button type="submit" data-action="create_session">Create session</button>
          <button type="submit" data-action="join_session">Join session</button>
        </form>
        <pre id="feed" class="feed"></pre>
      </section>
    </main>

    <script>
      const form = document.getElementById("playForm");
      const feed = document.getElementById("feed");
      const proto = location.protocol === "https:" ? "wss" : "ws";
      const socket = new WebSocket(proto + "://" + location.host + "/ws");
      let action = "create_session";

      for (const btn of form.querySelectorAll("button")) {
        btn.addEventListener("click", () => { action = btn.dataset.action; });
      }

      socket.addEventListener("message", (event) => {
        const msg = JSON.parse(event.data);
        feed.textContent += msg.type + " " + JSON.stringify(msg.data || {}) + "\n";
      });

      form.addEventListener("submit", (event) => {
        event.preventDefault();
        socket.send(JSON.stringify({
          type: action,
          data: {
            sessionId: form.elements.session.value.trim(),
            username: form.elements.username.value.trim()
          }
        }));
      });
    </script>
  </body>
</html>
`)
		return nil
	})
}
