package shader

// Kernels are written against WebGL2 and address their inputs with
// texelFetch at gl_FragCoord, so a draw covers exactly one N×N target.

const kernelPreamble = `#version 300 es
precision highp float;
precision highp int;
precision highp sampler2D;

const float PI = 3.14159265359;
const float G = 9.81;
const float KM = 370.0;
const float CM = 0.23;

uniform int u_resolution;

out vec4 outColor;

int fold(int i, int n) {
    return i < n / 2 ? i : i - n;
}

ivec2 wrap(ivec2 c, int n) {
    return ivec2((c.x % n + n) % n, (c.y % n + n) % n);
}

vec2 waveVector(ivec2 c, int n, float size) {
    return 2.0 * PI * vec2(float(fold(c.x, n)), float(fold(c.y, n))) / size;
}

float omega(float k) {
    return sqrt(G * k * (1.0 + (k / KM) * (k / KM)));
}

vec2 cmul(vec2 a, vec2 b) {
    return vec2(a.x * b.x - a.y * b.y, a.y * b.x + a.x * b.y);
}

float square(float x) {
    return x * x;
}
`

const initialSpectrumKernel = `
uniform vec2 u_wind;
uniform float u_size;

void main() {
    ivec2 coord = ivec2(gl_FragCoord.xy);
    vec2 K = waveVector(coord, u_resolution, u_size);
    float k = length(K);
    float U10 = length(u_wind);
    if (k == 0.0 || U10 == 0.0) {
        outColor = vec4(0.0);
        return;
    }

    float Omega = 0.84;
    float kp = G * square(Omega / U10);

    float c = omega(k) / k;
    float cp = omega(kp) / kp;

    float Lpm = exp(-1.25 * square(kp / k));
    float gamma = 1.7;
    float sigma = 0.08 * (1.0 + 4.0 * pow(Omega, -3.0));
    float Gamma = exp(-square(sqrt(k / kp) - 1.0) / 2.0 * square(sigma));
    float Jp = pow(gamma, Gamma);
    float Fp = Lpm * Jp * exp(-Omega / sqrt(10.0) * (sqrt(k / kp) - 1.0));
    float alphap = 0.006 * sqrt(Omega);
    float Bl = 0.5 * alphap * cp / c * Fp;

    float z0 = 0.000037 * square(U10) / G * pow(U10 / cp, 0.9);
    float uStar = 0.41 * U10 / log(10.0 / z0);
    float alpham = 0.01 * (uStar < CM ? 1.0 + log(uStar / CM) : 1.0 + 3.0 * log(uStar / CM));
    float Fm = exp(-0.25 * square(k / KM - 1.0));
    float Bh = 0.5 * alpham * CM / c * Fm * Lpm;

    float a0 = log(2.0) / 4.0;
    float am = 0.13 * uStar / CM;
    float Delta = tanh(a0 + 4.0 * pow(c / cp, 2.5) + am * pow(CM / c, 2.5));

    float cosPhi = dot(normalize(u_wind), K / k);

    float S = (1.0 / (2.0 * PI)) * pow(k, -4.0) * (Bl + Bh) * (1.0 + Delta * (2.0 * cosPhi * cosPhi - 1.0));

    float dk = 2.0 * PI / u_size;
    float h = sqrt(S / 2.0) * dk;

    outColor = vec4(h, 0.0, 0.0, 0.0);
}
`

const phaseKernel = `
uniform sampler2D u_phases;
uniform float u_deltaTime;
uniform float u_size;

void main() {
    ivec2 coord = ivec2(gl_FragCoord.xy);
    float phase = texelFetch(u_phases, coord, 0).r;
    float k = length(waveVector(coord, u_resolution, u_size));
    float p = mod(phase + omega(k) * u_deltaTime, 2.0 * PI);
    if (p >= 2.0 * PI) {
        p = 0.0;
    }
    outColor = vec4(p, 0.0, 0.0, 0.0);
}
`

const spectrumKernel = `
uniform sampler2D u_phases;
uniform sampler2D u_initialSpectrum;
uniform float u_size;
uniform float u_choppiness;

void main() {
    ivec2 coord = ivec2(gl_FragCoord.xy);
    int n = u_resolution;
    vec2 K = waveVector(coord, n, u_size);
    float k = length(K);
    if (k == 0.0) {
        outColor = vec4(0.0);
        return;
    }

    float phase = texelFetch(u_phases, coord, 0).r;
    vec2 h0 = texelFetch(u_initialSpectrum, coord, 0).rg;
    vec2 h0Star = texelFetch(u_initialSpectrum, wrap(ivec2(n) - coord, n), 0).rg;
    h0Star.y *= -1.0;

    vec2 pv = vec2(cos(phase), sin(phase));
    vec2 h = cmul(h0, pv) + cmul(h0Star, vec2(pv.x, -pv.y));

    // -i·h scaled by the horizontal direction of K. The Nyquist column and
    // row are their own mirror, so their odd component is dropped.
    vec2 dir = K / k;
    if (coord.x == n / 2) {
        dir.x = 0.0;
    }
    if (coord.y == n / 2) {
        dir.y = 0.0;
    }
    vec2 minusIH = vec2(h.y, -h.x);
    vec2 hX = minusIH * (dir.x * u_choppiness);
    vec2 hZ = minusIH * (dir.y * u_choppiness);

    outColor = vec4(hX + vec2(-h.y, h.x), hZ);
}
`

const subtransformKernel = `
uniform sampler2D u_input;
uniform float u_subtransformSize;

void main() {
    ivec2 coord = ivec2(gl_FragCoord.xy);
    int n = u_resolution;
    int s = int(u_subtransformSize);
    int halfSize = s / 2;

#ifdef HORIZONTAL
    int index = coord.x;
#else
    int index = coord.y;
#endif

    int evenIndex = (index / s) * halfSize + index % halfSize;
    int oddIndex = evenIndex + n / 2;

#ifdef HORIZONTAL
    vec4 even = texelFetch(u_input, ivec2(evenIndex, coord.y), 0);
    vec4 odd = texelFetch(u_input, ivec2(oddIndex, coord.y), 0);
#else
    vec4 even = texelFetch(u_input, ivec2(coord.x, evenIndex), 0);
    vec4 odd = texelFetch(u_input, ivec2(coord.x, oddIndex), 0);
#endif

    float angle = -2.0 * PI * float(index) / float(s);
    vec2 twiddle = vec2(cos(angle), sin(angle));

    outColor = vec4(even.rg + cmul(twiddle, odd.rg), even.ba + cmul(twiddle, odd.ba));
}
`

const normalsKernel = `
uniform sampler2D u_displacementMap;
uniform float u_size;

vec3 displacement(ivec2 c) {
    return texelFetch(u_displacementMap, wrap(c, u_resolution), 0).rgb;
}

void main() {
    ivec2 coord = ivec2(gl_FragCoord.xy);
    float texelSize = u_size / float(u_resolution);

    vec3 center = displacement(coord);
    vec3 right = vec3(texelSize, 0.0, 0.0) + displacement(coord + ivec2(1, 0)) - center;
    vec3 left = vec3(-texelSize, 0.0, 0.0) + displacement(coord + ivec2(-1, 0)) - center;
    vec3 top = vec3(0.0, 0.0, -texelSize) + displacement(coord + ivec2(0, -1)) - center;
    vec3 bottom = vec3(0.0, 0.0, texelSize) + displacement(coord + ivec2(0, 1)) - center;

    vec3 sum = cross(right, top) + cross(top, left) + cross(left, bottom) + cross(bottom, right);
    float len = length(sum);
    outColor = len == 0.0 ? vec4(0.0, 1.0, 0.0, 1.0) : vec4(sum / len, 1.0);
}
`

const surfaceFragment = `#version 300 es
precision highp float;

in vec3 v_position;
in vec2 v_uv;
out vec4 fragColor;

uniform sampler2D u_normalMap;
uniform vec3 u_cameraPosition;
uniform vec3 u_oceanColor;
uniform vec3 u_skyColor;
uniform vec3 u_sunDirection;
uniform float u_exposure;

vec3 hdr(vec3 color, float exposure) {
    return 1.0 - exp(-color * exposure);
}

void main() {
    vec3 normal = texture(u_normalMap, v_uv).rgb;

    vec3 view = normalize(u_cameraPosition - v_position);
    float fresnel = 0.02 + 0.98 * pow(1.0 - dot(normal, view), 5.0);
    vec3 sky = fresnel * u_skyColor;

    float diffuse = clamp(dot(normal, normalize(u_sunDirection)), 0.0, 1.0);
    vec3 water = (1.0 - fresnel) * u_oceanColor * u_skyColor * diffuse;

    fragColor = vec4(hdr(sky + water, u_exposure), 1.0);
}
`
