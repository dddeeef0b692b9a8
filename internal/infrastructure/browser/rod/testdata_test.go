package rod

// Test pages served by httptest.
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	LoginHTML = `<!DOCTYPE html>
<html>
<body>
	<form id="login" onsubmit="event.preventDefault(); location.href = '/dashboard';">
		<input id="email" type="email" placeholder="邮箱" />
		<input id="password" type="password" />
		<button type="submit">登录</button>
	</form>
</body>
</html>`

	CheckinHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="overlay" style="position:fixed;inset:0;background:rgba(0,0,0,.4)"></div>
	<button class="checkin-btn" id="checkin">立即签到</button>
	<span class="hidden-note" style="display:none">secret</span>
	<script>
		document.getElementById('checkin').addEventListener('click', function() {
			this.textContent = '已完成';
			this.setAttribute('disabled', '');
		});
	</script>
</body>
</html>`

	BalanceHTML = `<!DOCTYPE html>
<html>
<body>
	<div class="balance-card"><span>余额</span> <b>¥ 42.00</b></div>
</body>
</html>`
)
