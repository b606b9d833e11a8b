package loopback

// capturePage posts the redirect fragment back to /token on the same origin.
const capturePage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Signing in</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: #f5f7fa; color: #1f2937; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; }
  .card { background: #fff; border-radius: 12px; padding: 32px 40px; box-shadow: 0 4px 24px rgba(0,0,0,.08); text-align: center; max-width: 420px; }
  .ok { color: #047857; }
  .err { color: #b91c1c; }
</style>
</head>
<body>
<div class="card">
  <h2 id="status">Completing sign-in...</h2>
  <p id="detail">Please wait.</p>
</div>
<script>
(function () {
  var raw = window.location.hash ? window.location.hash.substring(1) : window.location.search.substring(1);
  var status = document.getElementById("status");
  var detail = document.getElementById("detail");
  if (!raw) {
    status.textContent = "Nothing to capture";
    status.className = "err";
    detail.textContent = "The sign-in provider did not return any credentials. Please try again from the application.";
    return;
  }
  fetch("/token", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({ fragment: raw })
  })
    .then(function (r) { return r.json(); })
    .then(function (d) {
      if (d.success) {
        status.textContent = "Signed in";
        status.className = "ok";
        detail.textContent = "You can close this window and return to the application.";
      } else {
        status.textContent = "Already signed in";
        detail.textContent = d.message || "This sign-in was already completed.";
      }
      history.replaceState(null, "", "/");
    })
    .catch(function () {
      status.textContent = "Sign-in failed";
      status.className = "err";
      detail.textContent = "The application is no longer waiting. Please start sign-in again.";
    });
})();
</script>
</body>
</html>
`
