package handler

// disclosurePage статичная обучающая страница, показывается при клике без
// параметра redirect
const disclosurePage = `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>Security Awareness Notice</title>
	<style>
		body { font-family: Arial, sans-serif; max-width: 600px; margin: 40px auto; padding: 0 20px; color: #1f2937; }
		h1 { color: #d62828; }
		.tips { background: #f3f4f6; border-radius: 8px; padding: 16px 24px; }
	</style>
</head>
<body>
	<h1>This was a simulated phishing exercise</h1>
	<p>You clicked a link from a training campaign. No harm was done, but a
	real attacker could have used a message like this to steal your
	credentials or deliver malware.</p>
	<div class="tips">
		<p><b>Before clicking next time:</b></p>
		<ul>
			<li>Check the sender address, not just the display name</li>
			<li>Hover over links to see where they really lead</li>
			<li>Be suspicious of urgency, prizes and free downloads</li>
		</ul>
	</div>
	<p>Your click was recorded for training statistics.</p>
</body>
</html>`
